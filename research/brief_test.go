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

func TestRunBriefPhase_WellFormedJSON(t *testing.T) {
	lm := newScriptedModel(`{"research_brief": "Survey few-shot text-to-SQL techniques", "key_questions": ["What methods exist?", "How do they compare?"], "research_scope": "technical"}`)
	state := newResearchState("research few-shot text-to-SQL", "inv-1")

	brief := runBriefPhase(context.Background(), lm, DefaultConfig(), state)

	assert.Equal(t, "Survey few-shot text-to-SQL techniques", brief.Brief)
	assert.Equal(t, []string{"What methods exist?", "How do they compare?"}, brief.KeyQuestions)
	assert.Equal(t, "technical", brief.Scope)
}

func TestRunBriefPhase_MissingScopeDefaultsToGeneral(t *testing.T) {
	lm := newScriptedModel(`{"research_brief": "Look into it", "key_questions": []}`)
	state := newResearchState("q", "inv-2")

	brief := runBriefPhase(context.Background(), lm, DefaultConfig(), state)

	assert.Equal(t, defaultResearchScope, brief.Scope)
	assert.Empty(t, brief.KeyQuestions)
}

func TestRunBriefPhase_KeyQuestionsCappedAtFive(t *testing.T) {
	lm := newScriptedModel(`{"research_brief": "b", "key_questions": ["q1","q2","q3","q4","q5","q6","q7"]}`)
	state := newResearchState("q", "inv-3")

	brief := runBriefPhase(context.Background(), lm, DefaultConfig(), state)

	assert.Len(t, brief.KeyQuestions, 5)
}

func TestRunBriefPhase_NonJSONSalvagesFromRawText(t *testing.T) {
	lm := newScriptedModel("This is just prose.\nWhat should we focus on?\nHow deep should we go?")
	state := newResearchState("q", "inv-4")

	brief := runBriefPhase(context.Background(), lm, DefaultConfig(), state)

	require.Equal(t, "This is just prose.\nWhat should we focus on?\nHow deep should we go?", brief.Brief)
	assert.Equal(t, []string{"What should we focus on?", "How deep should we go?"}, brief.KeyQuestions)
	assert.Equal(t, defaultResearchScope, brief.Scope)
}

func TestRunBriefPhase_LMFailureSalvagesFromUserMessage(t *testing.T) {
	lm := newScriptedModel("")
	lm.failAfter = 0
	state := newResearchState("What is the capital of France?", "inv-5")

	brief := runBriefPhase(context.Background(), lm, DefaultConfig(), state)

	assert.Equal(t, "What is the capital of France?", brief.Brief)
	assert.Equal(t, defaultResearchScope, brief.Scope)
}

func TestSalvageBrief_IgnoresNonQuestionLines(t *testing.T) {
	out := salvageBrief("Just a statement.\nWhat is the answer?\nNot a question either.")
	assert.Equal(t, []string{"What is the answer?"}, out.KeyQuestions)
}

func TestIsQuestionStarter(t *testing.T) {
	assert.True(t, isQuestionStarter("what"))
	assert.True(t, isQuestionStarter("how"))
	assert.False(t, isQuestionStarter("is"))
}
