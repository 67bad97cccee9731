//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

package research

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	coremodel "deepresearch/core/model"
	"deepresearch/log"
)

const reportPromptTemplate = `You are the reporting stage of a research assistant.
Using the research brief and findings below, write a final report with
exactly five Markdown headings, in this order: "Executive Summary",
"Detailed Analysis", "Key Insights", "Practical Recommendations", and
"Conclusion".

Research brief: %s

Findings:
%s`

const fallbackReportHeader = "# Research Report"
const findingsSummaryHeading = "## Findings Summary"

var requiredReportHeadings = []string{
	"Executive Summary",
	"Detailed Analysis",
	"Key Insights",
	"Practical Recommendations",
	"Conclusion",
}

// runReportPhase implements Phase 4 (§4.4): one LM call for the five-section
// report, falling back to a deterministic report built from raw notes on LM
// failure or a malformed heading structure.
func runReportPhase(ctx context.Context, lm coremodel.Model, cfg DeepResearchConfig, state *ResearchState) string {
	prompt := fmt.Sprintf(reportPromptTemplate, state.Brief, strings.Join(state.Notes, "\n\n"))

	resp, err := lm.Generate(ctx, prompt, cfg.Provider, cfg.Model)
	if err != nil {
		log.Warnf("research: phase4 report LM call failed, emitting fallback report: %v", err)
		return fallbackReport(state.RawNotes)
	}
	state.addUsage(resp.Usage)

	if !hasRequiredHeadings(resp.Content) {
		log.Warnf("research: phase4 report missing required headings, emitting fallback report")
		return fallbackReport(state.RawNotes)
	}
	return resp.Content
}

// hasRequiredHeadings parses the report as Markdown and checks that every
// required section heading is present, in any heading level, using
// goldmark's AST rather than brittle string matching.
func hasRequiredHeadings(report string) bool {
	md := goldmark.New()
	reader := text.NewReader([]byte(report))
	doc := md.Parser().Parse(reader)

	found := make(map[string]bool, len(requiredReportHeadings))
	source := []byte(report)

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		for c := heading.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		text := strings.TrimSpace(buf.String())
		for _, want := range requiredReportHeadings {
			if strings.EqualFold(text, want) {
				found[want] = true
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return false
	}

	for _, want := range requiredReportHeadings {
		if !found[want] {
			return false
		}
	}
	return true
}

// fallbackReport implements §4.4's deterministic degradation path: a fixed
// header followed by the raw notes under a "Findings Summary" heading.
func fallbackReport(rawNotes []string) string {
	var b strings.Builder
	b.WriteString(fallbackReportHeader)
	b.WriteString("\n\n")
	b.WriteString(findingsSummaryHeading)
	b.WriteString("\n\n")
	if len(rawNotes) == 0 {
		b.WriteString("No findings were gathered.\n")
	} else {
		for _, note := range rawNotes {
			b.WriteString("- ")
			b.WriteString(note)
			b.WriteString("\n")
		}
	}
	return b.String()
}
