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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUseToolPattern(t *testing.T) {
	calls := Parse(`USE_TOOL: web_search("few-shot text-to-SQL")`)
	require.Len(t, calls, 1)
	assert.Equal(t, ToolWebSearch, calls[0].Name)
	assert.Equal(t, "few-shot text-to-SQL", calls[0].Arguments["query"])
	assert.NotEmpty(t, calls[0].ID)
}

func TestParseBarePattern(t *testing.T) {
	calls := Parse(`web_search("quantum computing")`)
	require.Len(t, calls, 1)
	assert.Equal(t, ToolWebSearch, calls[0].Name)
	assert.Equal(t, "quantum computing", calls[0].Arguments["query"])
}

func TestParseLabelPattern(t *testing.T) {
	calls := Parse("conduct_research: AI agent coordination methods")
	require.Len(t, calls, 1)
	assert.Equal(t, ToolConductResearch, calls[0].Name)
	assert.Equal(t, "AI agent coordination methods", calls[0].Arguments["research_topic"])
}

func TestParseJSONArguments(t *testing.T) {
	calls := Parse(`USE_TOOL: doc_search({"query": "react hooks", "library": "react"})`)
	require.Len(t, calls, 1)
	assert.Equal(t, "react hooks", calls[0].Arguments["query"])
	assert.Equal(t, "react", calls[0].Arguments["library"])
}

func TestParseIgnoresNonCatalogBareCalls(t *testing.T) {
	calls := Parse(`not_a_tool("x")`)
	assert.Empty(t, calls)
}

func TestParseMultipleCallsPreserveOrder(t *testing.T) {
	text := "USE_TOOL: web_search(\"a\")\nUSE_TOOL: scholar_search(\"b\")\n"
	calls := Parse(text)
	require.Len(t, calls, 2)
	assert.Equal(t, ToolWebSearch, calls[0].Name)
	assert.Equal(t, ToolScholarSearch, calls[1].Name)
}

// TestForcedProgressLaw directly exercises the §8 law: given an assistant
// message with zero parseable calls but containing "research", the parser
// yields exactly one web_search call.
func TestForcedProgressLaw(t *testing.T) {
	text := "I think we should research the latest developments in battery technology."
	calls := Parse(text)
	require.Len(t, calls, 1)
	assert.Equal(t, ToolWebSearch, calls[0].Name)
	assert.NotEmpty(t, calls[0].Arguments["query"])
}

func TestForcedProgressGuardNoTriggerWithoutKeywords(t *testing.T) {
	calls := Parse("This is just a plain sentence with no trigger words.")
	assert.Empty(t, calls)
}

func TestParseRejectsCallMissingRequiredArg(t *testing.T) {
	calls := Parse(`USE_TOOL: think()`)
	assert.Empty(t, calls, "think requires a non-empty thoughts argument")
}

func TestParseRejectsCallWithEmptyJSONObjectArgs(t *testing.T) {
	// conduct_research requires research_topic, which {} does not supply, so
	// the call itself is dropped; the forced-progress guard then still fires
	// on this line's "research" mention and synthesizes a web_search call.
	calls := Parse(`USE_TOOL: conduct_research({})`)
	require.Len(t, calls, 1)
	assert.Equal(t, ToolWebSearch, calls[0].Name)
}

func TestHasRequiredArgsDirect(t *testing.T) {
	assert.False(t, hasRequiredArgs(ToolThink, map[string]any{}))
	assert.False(t, hasRequiredArgs(ToolConductResearch, map[string]any{"research_topic": ""}))
	assert.True(t, hasRequiredArgs(ToolThink, map[string]any{"thoughts": "a note"}))
}

func TestForcedProgressGuardDirect(t *testing.T) {
	call, ok := ForcedProgressGuard("Let's search for recent papers on transformers today")
	require.True(t, ok)
	assert.Equal(t, ToolWebSearch, call.Name)
	assert.NotEmpty(t, call.ID)
}
