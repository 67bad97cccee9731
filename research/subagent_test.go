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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSubAgentLoop_AcceptsImmediatelyAfterWebSearch(t *testing.T) {
	lm := newScriptedModel(
		`USE_TOOL: web_search("few-shot text-to-SQL")`,
		`The summary of findings.`,
	)
	agg := newTestAggregator(t)
	cfg := DefaultConfig()

	summary, err := runSubAgentLoop(context.Background(), lm, cfg, agg, "few-shot text-to-SQL", nil)

	require.NoError(t, err)
	assert.Equal(t, "The summary of findings.", summary)
	assert.Equal(t, 2, lm.callCount())
}

func TestRunSubAgentLoop_AcceptsAtIterationTwoWithoutSearch(t *testing.T) {
	lm := newScriptedModel(
		`USE_TOOL: think("pondering the angle")`,
		`USE_TOOL: think("pondering some more")`,
		`final plain summary`,
	)
	agg := newTestAggregator(t)
	cfg := DefaultConfig()

	summary, err := runSubAgentLoop(context.Background(), lm, cfg, agg, "topic", nil)

	require.NoError(t, err)
	assert.Equal(t, "final plain summary", summary)
	assert.Equal(t, 3, lm.callCount())
}

func TestRunSubAgentLoop_ForcesWebSearchWhenNoToolCallYet(t *testing.T) {
	lm := newScriptedModel(
		`nothing useful to report`,
		`now I can summarize the findings`,
	)
	agg := newTestAggregator(t)
	cfg := DefaultConfig()

	summary, err := runSubAgentLoop(context.Background(), lm, cfg, agg, "topic", nil)

	require.NoError(t, err)
	assert.Equal(t, "now I can summarize the findings", summary)
	assert.Equal(t, 2, lm.callCount(), "forceWebSearch does not itself consume an LM call")
}

func TestRunSubAgentLoop_CompressionPassFiresAfterIterationCap(t *testing.T) {
	// Every one of the subAgentMaxIterations iterations emits a real (non-search)
	// tool call, so the loop never hits its early-accept branch and instead
	// exhausts the cap, falling through to the compression pass.
	lm := newScriptedModel(
		`USE_TOOL: think("angle one")`,
		`USE_TOOL: think("angle two")`,
		`USE_TOOL: think("angle three")`,
		`USE_TOOL: think("angle four")`,
		`USE_TOOL: think("angle five")`,
		`a compressed distillation of everything found`,
	)
	agg := newTestAggregator(t)
	cfg := DefaultConfig()

	summary, err := runSubAgentLoop(context.Background(), lm, cfg, agg, "topic", nil)

	require.NoError(t, err)
	assert.Equal(t, "a compressed distillation of everything found", summary)
	assert.Equal(t, subAgentMaxIterations+1, lm.callCount(), "5 loop iterations plus 1 compression call")
}

func TestForceWebSearch_NilAggregatorYieldsNoResultsMessage(t *testing.T) {
	conversation := forceWebSearch(context.Background(), nil, "topic", nil)

	require.Len(t, conversation, 2)
	assert.Equal(t, "No Web results found.", conversation[0].Content)
	assert.Equal(t, summarizeInstruction, conversation[1].Content)
}
