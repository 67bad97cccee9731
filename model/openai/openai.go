//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

// Package openai adapts the OpenAI chat-completions API to the single-shot
// core/model.Model interface the research orchestrator consumes.
package openai

import (
	"context"
	"fmt"

	openaigo "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	coremodel "deepresearch/core/model"
	"deepresearch/log"
)

// options configure the underlying OpenAI client.
type options struct {
	apiKey  string
	baseURL string
}

// Option configures a Model at construction time.
type Option func(*options)

// WithAPIKey sets the API key used for every request.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL points the client at a non-default endpoint (Azure OpenAI,
// a self-hosted gateway, etc).
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// Model is a coremodel.Model backed by the OpenAI chat-completions API. It
// is stateless and safe for concurrent use once constructed.
type Model struct {
	apiKey  string
	baseURL string
	client  openaigo.Client
}

// New builds a Model that issues chat completions. The model name (e.g.
// "gpt-4o-mini") is supplied per call to Generate.
func New(opts ...Option) *Model {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []option.RequestOption{}
	if o.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(o.baseURL))
	}

	return &Model{
		apiKey:  o.apiKey,
		baseURL: o.baseURL,
		client:  openaigo.NewClient(clientOpts...),
	}
}

// Generate issues one chat-completion request with prompt as the sole user
// message and returns the first choice's content. provider is accepted for
// interface symmetry with other adapters but ignored: this Model always
// talks to OpenAI (or an OpenAI-compatible endpoint via WithBaseURL).
func (m *Model) Generate(ctx context.Context, prompt string, provider, model string) (*coremodel.Response, error) {
	if model == "" {
		model = openaigo.ChatModelGPT4oMini
	}

	resp, err := m.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: model,
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(prompt),
		},
	})
	if err != nil {
		log.Warnf("model/openai: completion request failed: %v", err)
		return nil, fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai generate: empty choices")
	}

	return &coremodel.Response{
		Content: resp.Choices[0].Message.Content,
		Usage: coremodel.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
