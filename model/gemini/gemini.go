//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

// Package gemini adapts the Gemini API to the single-shot core/model.Model
// interface the research orchestrator consumes.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	coremodel "deepresearch/core/model"
	"deepresearch/log"
)

// options configure the underlying genai client.
type options struct {
	apiKey       string
	clientConfig *genai.ClientConfig
}

// Option configures a Model at construction time.
type Option func(*options)

// WithAPIKey sets the Gemini API key.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithGeminiClientConfig overrides the full client configuration, e.g. to
// switch Backend between the Gemini Developer API and Vertex AI.
func WithGeminiClientConfig(cfg *genai.ClientConfig) Option {
	return func(o *options) { o.clientConfig = cfg }
}

// Model is a coremodel.Model backed by the Gemini API.
type Model struct {
	client *genai.Client
}

// New builds a Model, constructing a genai.Client from the given options.
// A client construction failure is returned as an error with a nil Model.
func New(ctx context.Context, opts ...Option) (*Model, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.clientConfig
	if cfg == nil {
		cfg = &genai.ClientConfig{APIKey: o.apiKey, Backend: genai.BackendGeminiAPI}
	} else if cfg.APIKey == "" {
		cfg.APIKey = o.apiKey
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini new client: %w", err)
	}
	return &Model{client: client}, nil
}

// Generate issues one GenerateContent call with prompt as the sole user
// turn and returns the first candidate's text. provider is accepted for
// interface symmetry but ignored.
func (m *Model) Generate(ctx context.Context, prompt string, provider, model string) (*coremodel.Response, error) {
	if model == "" {
		model = "gemini-2.0-flash"
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := m.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		log.Warnf("model/gemini: generate content failed: %v", err)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini generate: empty candidates")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}

	usage := coremodel.Usage{}
	if resp.UsageMetadata != nil {
		usage = coremodel.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return &coremodel.Response{Content: text, Usage: usage}, nil
}
