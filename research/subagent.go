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
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	coremodel "deepresearch/core/model"
	"deepresearch/internal/telemetry"
	"deepresearch/log"
	"deepresearch/search"
	"deepresearch/toolcall"
)

const subAgentMaxIterations = 5

const subAgentSystemPromptTemplate = `You are a focused research sub-agent investigating one topic.

Topic: %s

Use the available search tools to gather findings, then summarize them in
plain text (no further tool calls) once you have enough coverage.

%s`

const coverageNudge = "You have not yet searched the web or scholarly sources for this topic. Use web_search and/or scholar_search before summarizing."

const summarizeInstruction = "Summarize your findings on this topic in plain text now; do not call any more tools."

// runSubAgentLoop implements Phase 3's sub-agent loop (§4.4) for one
// conduct_research topic. It never returns an error for ordinary LM/search
// failures (those degrade per §7); a non-nil error here indicates the
// caller's context was cancelled.
func runSubAgentLoop(ctx context.Context, lm coremodel.Model, cfg DeepResearchConfig, aggregator *search.Aggregator, topic string, tel *telemetry.Provider) (string, error) {
	if tel == nil {
		tel = telemetry.NewNoop()
	}
	dispatcher := toolcall.NewDispatcher(aggregator, nil)
	dispatcher.Telemetry = tel
	conversation := []coremodel.Message{
		coremodel.NewSystemMessage(fmt.Sprintf(subAgentSystemPromptTemplate, topic, toolcall.PromptBlock())),
	}

	var webOrScholarSearched bool

	for iteration := 0; iteration < subAgentMaxIterations; iteration++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		iterCtx, span := tel.StartSpan(ctx, telemetry.SpanSubAgentIter, attribute.Int("iteration", iteration), attribute.String("topic", topic))

		if iteration == 2 && !webOrScholarSearched {
			conversation = append(conversation, coremodel.NewUserMessage(coverageNudge))
		}

		resp, err := lm.Generate(iterCtx, renderConversation(conversation), cfg.Provider, cfg.Model)
		var text string
		if err != nil {
			log.Warnf("research: sub-agent LM call failed for topic %q on iteration %d: %v", topic, iteration+1, err)
		} else {
			text = resp.Content
		}

		calls := toolcall.Parse(text)
		conversation = append(conversation, coremodel.NewAssistantMessage(text, calls))

		if len(calls) == 0 {
			if webOrScholarSearched || iteration >= 2 {
				span.End()
				return text, nil
			}
			conversation = forceWebSearch(iterCtx, aggregator, topic, conversation)
			webOrScholarSearched = true
			span.End()
			continue
		}

		for _, call := range calls {
			if call.Name == toolcall.ToolWebSearch || call.Name == toolcall.ToolScholarSearch {
				webOrScholarSearched = true
			}
			msg := dispatcher.Dispatch(iterCtx, call)
			conversation = append(conversation, msg)
		}
		span.End()
	}

	return compressSubAgentConversation(ctx, lm, cfg, topic, conversation), nil
}

// forceWebSearch implements the keyless fallback: search via DuckDuckGo
// only, inject the formatted results as a tool message, and prompt the LM
// to summarize on the next iteration.
func forceWebSearch(ctx context.Context, aggregator *search.Aggregator, topic string, conversation []coremodel.Message) []coremodel.Message {
	opts := search.DefaultUnifiedSearchOptions()
	opts.Sources = []string{"duckduckgo"}

	var formatted string
	if aggregator == nil {
		formatted = "No Web results found."
	} else {
		results, err := aggregator.Search(ctx, topic, opts)
		if err != nil {
			log.Warnf("research: forced web_search for topic %q failed: %v", topic, err)
			formatted = "No Web results found."
		} else {
			formatted = toolcall.FormatResults("Web", results)
		}
	}

	toolMsg := coremodel.NewToolMessage(uuid.NewString(), toolcall.ToolWebSearch, formatted)
	conversation = append(conversation, toolMsg, coremodel.NewUserMessage(summarizeInstruction))
	return conversation
}

const compressionPromptTemplate = `You previously researched the topic "%s" but did not produce a final
summary within the allotted iterations. Distill the conversation below into
a concise, structured summary of the findings gathered so far.

Conversation:
%s`

// compressSubAgentConversation implements the compression pass described in
// §4.4: when the iteration cap is exceeded without an accepted summary, an
// LM call distills the whole sub-agent conversation into a topic summary.
func compressSubAgentConversation(ctx context.Context, lm coremodel.Model, cfg DeepResearchConfig, topic string, conversation []coremodel.Message) string {
	prompt := fmt.Sprintf(compressionPromptTemplate, topic, renderConversation(conversation))
	resp, err := lm.Generate(ctx, prompt, cfg.Provider, cfg.Model)
	if err != nil {
		log.Warnf("research: compression pass failed for topic %q: %v", topic, err)
		return fmt.Sprintf("Research on %q reached its iteration limit without a clean summary.", topic)
	}
	return resp.Content
}
