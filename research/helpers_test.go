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
	"errors"
	"sync"

	coremodel "deepresearch/core/model"
	"deepresearch/search"
)

// scriptedModel returns successive scripted responses on each Generate
// call, looping the last entry if exhausted. failAfter, if >= 0, makes
// every call at or after that index return failErr (or a generic error
// when failErr is nil) instead.
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
	calls     int
	failAfter int
	failErr   error
}

func newScriptedModel(responses ...string) *scriptedModel {
	return &scriptedModel{responses: responses, failAfter: -1}
}

func (m *scriptedModel) Generate(_ context.Context, _ string, _ string, _ string) (*coremodel.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.calls
	m.calls++

	if m.failAfter >= 0 && idx >= m.failAfter {
		if m.failErr != nil {
			return nil, m.failErr
		}
		return nil, errors.New("scripted failure")
	}

	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	if idx < 0 {
		return &coremodel.Response{}, nil
	}
	return &coremodel.Response{Content: m.responses[idx]}, nil
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fakeSearchAdapter is a deterministic, no-network search.Adapter test
// double keyed by a fixed service name.
type fakeSearchAdapter struct {
	name      string
	available bool
	results   []search.SearchResult
}

func (f *fakeSearchAdapter) Search(_ context.Context, _ string, _ search.SearchOptions) ([]search.SearchResult, error) {
	return f.results, nil
}

func (f *fakeSearchAdapter) IsAvailable() bool { return f.available }

func (f *fakeSearchAdapter) ServiceName() string { return f.name }

func newTestAggregator(t interface{ Fatalf(string, ...any) }) *search.Aggregator {
	adapters := []search.Adapter{
		&fakeSearchAdapter{name: "google", available: true, results: []search.SearchResult{
			{Title: "Few-shot text-to-SQL survey", URL: "https://example.com/a", Snippet: "survey of few-shot methods", RelevanceScore: 0.8, Source: "google"},
			{Title: "Practical SQL generation", URL: "https://example.com/b", Snippet: "practical recommendations", RelevanceScore: 0.7, Source: "google"},
		}},
		&fakeSearchAdapter{name: "duckduckgo", available: true, results: []search.SearchResult{
			{Title: "DDG result", URL: "https://example.com/c", Snippet: "general web result", RelevanceScore: 0.6, Source: "duckduckgo"},
		}},
	}
	agg, err := search.NewAggregator(adapters, 4)
	if err != nil {
		t.Fatalf("newTestAggregator: %v", err)
	}
	return agg
}
