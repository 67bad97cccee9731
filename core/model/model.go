//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

// Package model defines the injected language-model collaborator used by
// the research orchestrator and tool-call protocol.
package model

import "context"

// Model is the single LM completion capability the core consumes. It never
// streams: callers get one completed Response per call, matching the
// synchronous generate(prompt, provider, model) -> {content} contract.
type Model interface {
	// Generate produces one completion for prompt against the given
	// provider/model pair. The provider/model strings are adapter-specific
	// (e.g. "openai"/"gpt-4o-mini", "gemini"/"gemini-2.0-flash").
	Generate(ctx context.Context, prompt string, provider, model string) (*Response, error)
}

// Response is the LM's answer to one Generate call.
type Response struct {
	Content string
	Usage   Usage
}

// Usage reports token accounting for a single completion, when the
// underlying provider exposes it. Zero values mean "unknown", not "free".
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
