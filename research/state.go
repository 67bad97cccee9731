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
	coremodel "deepresearch/core/model"
)

// ResearchState is the orchestration accumulator for exactly one
// ConductDeepResearch invocation. It is never shared across invocations.
type ResearchState struct {
	UserMessage string
	Brief       string

	// Notes are compressed/formatted findings used downstream (phase 4);
	// RawNotes are lineage strings for audit.
	Notes    []string
	RawNotes []string

	SupervisorConversation []coremodel.Message

	ResearchIterations int

	// Usage and InvocationID are additive instrumentation (see
	// SPEC_FULL.md's Supplemented Features); neither participates in any
	// correctness invariant.
	Usage         coremodel.Usage
	InvocationID  string
}

func newResearchState(userMessage, invocationID string) *ResearchState {
	return &ResearchState{UserMessage: userMessage, InvocationID: invocationID}
}

func (s *ResearchState) addUsage(u coremodel.Usage) {
	s.Usage.PromptTokens += u.PromptTokens
	s.Usage.CompletionTokens += u.CompletionTokens
	s.Usage.TotalTokens += u.TotalTokens
}

// DeepResearchResult is the terminal output of ConductDeepResearch.
type DeepResearchResult struct {
	Success bool

	// Populated on success.
	ResearchBrief string
	FinalReport   string
	Notes         []string
	RawNotes      []string

	// Populated on failure.
	Error   string
	Details string

	// Additive instrumentation.
	TokenUsage   coremodel.Usage
	InvocationID string
}

func failureResult(invocationID, errMsg, details string) DeepResearchResult {
	return DeepResearchResult{Success: false, Error: errMsg, Details: details, InvocationID: invocationID}
}
