//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips trailing slash", "https://Example.com/Path/", "https://example.com/Path"},
		{"strips fragment", "https://example.com/path#section", "https://example.com/path"},
		{"lowercases host", "HTTPS://EXAMPLE.COM/path", "https://example.com/path"},
		{"keeps query", "https://example.com/path?x=1", "https://example.com/path?x=1"},
		{"falls back on unparsable input", "not a url at all", "not a url at all"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, NormalizeURL(c.in))
		})
	}
}

func TestNormalizeURLStability(t *testing.T) {
	inputs := []string{
		"https://Example.com/Path/",
		"https://example.com/path#frag",
		"HTTP://foo.BAR/baz/",
	}
	for _, in := range inputs {
		once := NormalizeURL(in)
		twice := NormalizeURL(once)
		assert.Equal(t, once, twice, "normalization must be idempotent for %q", in)
	}
}

func TestDedupeResultsIdempotence(t *testing.T) {
	results := []SearchResult{
		{Title: "a", URL: "https://example.com/a", RelevanceScore: 0.5},
		{Title: "a dup", URL: "https://example.com/a/", RelevanceScore: 0.9, Snippet: "longer snippet"},
		{Title: "b", URL: "https://example.com/b", RelevanceScore: 0.2},
	}

	once := DedupeResults(results)
	twice := DedupeResults(once)
	assert.Equal(t, once, twice)
	assert.Len(t, once, 2)

	for _, r := range once {
		if NormalizeURL(r.URL) == NormalizeURL("https://example.com/a") {
			assert.Equal(t, 0.9, r.RelevanceScore, "dedup should keep the higher-scoring entry")
		}
	}
}

func TestDedupeResultsNoSharedNormalizedURL(t *testing.T) {
	results := []SearchResult{
		{URL: "https://example.com/a/", RelevanceScore: 0.1},
		{URL: "https://example.com/a", RelevanceScore: 0.9},
		{URL: "https://example.com/b", RelevanceScore: 0.3},
	}
	deduped := DedupeResults(results)
	seen := map[string]bool{}
	for _, r := range deduped {
		key := NormalizeURL(r.URL)
		assert.False(t, seen[key], "duplicate normalized URL after dedup: %s", key)
		seen[key] = true
	}
}

func TestLexicalRelevance(t *testing.T) {
	score := LexicalRelevance("go concurrency patterns", "Go Concurrency Patterns Explained", "deep dive into channels")
	assert.Greater(t, score, 0.5)
	assert.LessOrEqual(t, score, 1.0)

	assert.Equal(t, 0.0, LexicalRelevance("unrelated query", "totally different title", "totally different snippet"))
}

func TestLexicalRelevanceClampedToOne(t *testing.T) {
	score := LexicalRelevance("alpha beta gamma delta", "alpha beta gamma delta alpha beta gamma delta", "alpha beta gamma delta")
	assert.LessOrEqual(t, score, 1.0)
}
