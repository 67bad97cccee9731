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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremodel "deepresearch/core/model"
)

type fakeDelegate struct {
	summary string
	err     error
}

func (f *fakeDelegate) ConductResearch(ctx context.Context, topic string) (string, error) {
	return f.summary, f.err
}

func TestDispatchThinkIsEcho(t *testing.T) {
	d := NewDispatcher(nil, nil)
	call := coremodel.ToolCall{ID: "1", Name: ToolThink, Arguments: map[string]any{"thoughts": "considering approach X"}}
	msg := d.Dispatch(context.Background(), call)

	assert.Equal(t, coremodel.RoleTool, msg.Role)
	assert.Equal(t, "1", msg.ToolCallID)
	assert.Equal(t, ToolThink, msg.Name)
	assert.Contains(t, msg.Content, "considering approach X")
}

func TestDispatchUnknownToolIsNonFatal(t *testing.T) {
	d := NewDispatcher(nil, nil)
	call := coremodel.ToolCall{ID: "2", Name: "not_in_catalog"}
	msg := d.Dispatch(context.Background(), call)

	assert.Equal(t, coremodel.RoleTool, msg.Role)
	assert.Contains(t, msg.Content, "Unknown tool")
}

func TestDispatchConductResearchUsesDelegate(t *testing.T) {
	d := NewDispatcher(nil, &fakeDelegate{summary: "topic summary here"})
	call := coremodel.ToolCall{ID: "3", Name: ToolConductResearch, Arguments: map[string]any{"research_topic": "x"}}
	msg := d.Dispatch(context.Background(), call)

	assert.Equal(t, "topic summary here", msg.Content)
}

func TestDispatchAlwaysProducesExactlyOneToolMessage(t *testing.T) {
	d := NewDispatcher(nil, nil)
	calls := []coremodel.ToolCall{
		{ID: "a", Name: ToolThink, Arguments: map[string]any{"thoughts": "x"}},
		{ID: "b", Name: ToolResearchComplete, Arguments: map[string]any{"summary": "done"}},
		{ID: "c", Name: "bogus"},
	}
	for _, call := range calls {
		msg := d.Dispatch(context.Background(), call)
		require.Equal(t, call.ID, msg.ToolCallID, "tool message must reference the originating call id")
		assert.Equal(t, coremodel.RoleTool, msg.Role)
	}
}
