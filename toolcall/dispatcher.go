//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

package toolcall

import (
	"context"
	"fmt"

	coremodel "deepresearch/core/model"
	"deepresearch/internal/telemetry"
	"deepresearch/log"
	"deepresearch/search"
)

// ResearchDelegate is the callback the orchestrator injects so that a
// dispatched conduct_research call can recurse into the sub-agent loop
// without toolcall importing the research package (which imports toolcall
// for dispatch). The returned string becomes the tool's content.
type ResearchDelegate interface {
	ConductResearch(ctx context.Context, topic string) (string, error)
}

// Dispatcher executes parsed ToolCalls against the search aggregator and
// the injected research delegate. Every call produces exactly one
// tool-role Message; dispatch never returns a bare error.
type Dispatcher struct {
	Aggregator *search.Aggregator
	Delegate   ResearchDelegate

	// Telemetry is best-effort instrumentation; nil behaves like
	// telemetry.NewNoop().
	Telemetry *telemetry.Provider
}

// NewDispatcher builds a Dispatcher over the given aggregator and delegate.
// Delegate may be nil for contexts (e.g. inside a sub-agent loop) where
// conduct_research should not be honored; such a call still produces a
// tool message rather than aborting the invocation.
func NewDispatcher(aggregator *search.Aggregator, delegate ResearchDelegate) *Dispatcher {
	return &Dispatcher{Aggregator: aggregator, Delegate: delegate, Telemetry: telemetry.NewNoop()}
}

// Dispatch executes one ToolCall and returns the tool-role message that
// answers it.
func (d *Dispatcher) Dispatch(ctx context.Context, call coremodel.ToolCall) coremodel.Message {
	if d.Telemetry != nil {
		d.Telemetry.RecordToolCall(ctx, call.Name)
	}
	content := d.execute(ctx, call)
	return coremodel.NewToolMessage(call.ID, call.Name, content)
}

func (d *Dispatcher) execute(ctx context.Context, call coremodel.ToolCall) string {
	switch call.Name {
	case ToolWebSearch:
		return d.dispatchSearch(ctx, call, "Web")
	case ToolScholarSearch:
		return d.dispatchScholar(ctx, call)
	case ToolNewsSearch:
		return d.dispatchNews(ctx, call)
	case ToolDocSearch:
		return d.dispatchDocs(ctx, call)
	case ToolThink:
		return fmt.Sprintf("Thinking: %s", stringArg(call, "thoughts"))
	case ToolConductResearch:
		return d.dispatchConductResearch(ctx, call)
	case ToolResearchComplete:
		return fmt.Sprintf("Research complete: %s", stringArg(call, "summary"))
	default:
		log.Warnf("toolcall: unknown tool %q dispatched", call.Name)
		return fmt.Sprintf("Unknown tool: %s", call.Name)
	}
}

func (d *Dispatcher) dispatchSearch(ctx context.Context, call coremodel.ToolCall, label string) string {
	if d.Aggregator == nil {
		return fmt.Sprintf("No %s results found.", label)
	}
	query := stringArg(call, "query")
	opts := search.DefaultUnifiedSearchOptions()
	opts.Sources = []string{"google", "duckduckgo", "tavily", "langsearch"}
	results, err := d.Aggregator.Search(ctx, query, opts)
	if err != nil {
		log.Warnf("toolcall: web_search failed: %v", err)
		return fmt.Sprintf("No %s results found.", label)
	}
	return FormatResults(label, results)
}

func (d *Dispatcher) dispatchScholar(ctx context.Context, call coremodel.ToolCall) string {
	if d.Aggregator == nil {
		return "No Scholar results found."
	}
	query := stringArg(call, "query")
	results, err := d.Aggregator.SearchScholar(ctx, query, search.DefaultUnifiedSearchOptions())
	if err != nil {
		log.Warnf("toolcall: scholar_search failed: %v", err)
		return "No Scholar results found."
	}
	return FormatResults("Scholar", results)
}

func (d *Dispatcher) dispatchNews(ctx context.Context, call coremodel.ToolCall) string {
	if d.Aggregator == nil {
		return "No News results found."
	}
	query := stringArg(call, "query")
	results, err := d.Aggregator.SearchNews(ctx, query, search.DefaultUnifiedSearchOptions())
	if err != nil {
		log.Warnf("toolcall: news_search failed: %v", err)
		return "No News results found."
	}
	return FormatResults("News", results)
}

func (d *Dispatcher) dispatchDocs(ctx context.Context, call coremodel.ToolCall) string {
	if d.Aggregator == nil {
		return "No Documentation results found."
	}
	query := stringArg(call, "query")
	library := stringArg(call, "library")
	results, err := d.Aggregator.SearchDocumentation(ctx, query, library, search.DefaultUnifiedSearchOptions())
	if err != nil {
		log.Warnf("toolcall: doc_search failed: %v", err)
		return "No Documentation results found."
	}
	return FormatResults("Documentation", results)
}

func (d *Dispatcher) dispatchConductResearch(ctx context.Context, call coremodel.ToolCall) string {
	if d.Delegate == nil {
		return "conduct_research is unavailable in this context."
	}
	topic := stringArg(call, "research_topic")
	summary, err := d.Delegate.ConductResearch(ctx, topic)
	if err != nil {
		log.Warnf("toolcall: conduct_research failed for topic %q: %v", topic, err)
		return fmt.Sprintf("Research on %q could not be completed: %v", topic, err)
	}
	return summary
}

func stringArg(call coremodel.ToolCall, key string) string {
	v, ok := call.Arguments[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
