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
	"fmt"
	"os"
)

// SearchDepth selects how aggressively the sub-agent loops pursue
// coverage. It is carried on DeepResearchConfig per §3; no bound and no
// prompt in this package reads it.
type SearchDepth string

// Recognized search depths.
const (
	SearchDepthBasic    SearchDepth = "basic"
	SearchDepthAdvanced SearchDepth = "advanced"
)

// DeepResearchConfig is the immutable per-invocation configuration
// described in §3.
type DeepResearchConfig struct {
	Provider            string
	Model               string
	MaxIterations       int
	MaxConcurrentAgents int
	SearchDepth         SearchDepth
	TimeoutMs           int
}

// Option mutates a DeepResearchConfig at construction time.
type Option func(*DeepResearchConfig)

// WithProvider sets the LM provider tag.
func WithProvider(provider string) Option {
	return func(c *DeepResearchConfig) { c.Provider = provider }
}

// WithModel sets the LM model tag.
func WithModel(model string) Option {
	return func(c *DeepResearchConfig) { c.Model = model }
}

// WithMaxIterations sets the supervisor loop's iteration cap (typ. 2-6).
func WithMaxIterations(n int) Option {
	return func(c *DeepResearchConfig) { c.MaxIterations = n }
}

// WithMaxConcurrentAgents sets the advisory sub-agent concurrency hint
// (typ. 3).
func WithMaxConcurrentAgents(n int) Option {
	return func(c *DeepResearchConfig) { c.MaxConcurrentAgents = n }
}

// WithSearchDepth sets the search depth hint carried on the config.
func WithSearchDepth(depth SearchDepth) Option {
	return func(c *DeepResearchConfig) { c.SearchDepth = depth }
}

// WithTimeout sets the overall invocation budget in milliseconds
// (typ. 180000).
func WithTimeout(ms int) Option {
	return func(c *DeepResearchConfig) { c.TimeoutMs = ms }
}

// DefaultConfig returns the documented defaults, then applies opts.
func DefaultConfig(opts ...Option) DeepResearchConfig {
	cfg := DeepResearchConfig{
		Provider:            "openai",
		Model:               "gpt-4o-mini",
		MaxIterations:       3,
		MaxConcurrentAgents: 3,
		SearchDepth:         SearchDepthBasic,
		TimeoutMs:           180000,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate checks the config invariants from §6: max_iterations >= 1,
// max_concurrent_agents >= 1, timeout_ms > 0.
func (c DeepResearchConfig) Validate() error {
	if c.MaxIterations < 1 {
		return ErrInvalidMaxIterations
	}
	if c.MaxConcurrentAgents < 1 {
		return ErrInvalidMaxConcurrency
	}
	if c.TimeoutMs <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// ProviderCredentials is construction-time configuration injected into the
// aggregator and model adapters: per §9's design note, nothing in the core
// reads ambient state at call time. Only CredentialsFromEnv, called once at
// startup by cmd/research and cmd/server, populates this from the process
// environment.
type ProviderCredentials struct {
	GoogleCSEAPIKey string
	GoogleCSECX     string
	TavilyAPIKey    string
	LangSearchAPIKey string
	OpenAIAPIKey    string
	GeminiAPIKey    string
}

// CredentialsFromEnv reads provider credentials from the process
// environment. It is intended to be called exactly once at process
// startup by cmd/research or cmd/server, never by the core library at call
// time.
func CredentialsFromEnv() ProviderCredentials {
	return ProviderCredentials{
		GoogleCSEAPIKey:  os.Getenv("GOOGLE_CSE_API_KEY"),
		GoogleCSECX:      os.Getenv("GOOGLE_CSE_CX"),
		TavilyAPIKey:     os.Getenv("TAVILY_API_KEY"),
		LangSearchAPIKey: os.Getenv("LANGSEARCH_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
	}
}

func (c ProviderCredentials) String() string {
	return fmt.Sprintf("ProviderCredentials{google=%v tavily=%v langsearch=%v openai=%v gemini=%v}",
		c.GoogleCSEAPIKey != "", c.TavilyAPIKey != "", c.LangSearchAPIKey != "", c.OpenAIAPIKey != "", c.GeminiAPIKey != "")
}
