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
	"net/url"
	"strings"
)

// stopwords filtered out when extracting query tokens for scoring and for
// the forced-research topic synthesis used by the orchestrator.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "in": {},
	"on": {}, "for": {}, "to": {}, "is": {}, "are": {}, "with": {}, "about": {},
	"what": {}, "how": {}, "why": {}, "when": {}, "where": {}, "tell": {}, "me": {},
}

// NormalizeURL is the identity function for deduplication: scheme + host +
// path (trailing slash stripped) + query string, fragment discarded. On
// parse failure it falls back to lowercasing and stripping a trailing
// slash from the raw string. Idempotent: NormalizeURL(NormalizeURL(u)) ==
// NormalizeURL(u).
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "/")
	}
	path := strings.TrimSuffix(u.Path, "/")
	normalized := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + path
	if u.RawQuery != "" {
		normalized += "?" + u.RawQuery
	}
	return normalized
}

// DedupeResults collapses results sharing a normalized URL, keeping the
// entry with the higher relevance score, breaking ties by longer snippet.
// Idempotent: DedupeResults(DedupeResults(xs)) == DedupeResults(xs).
func DedupeResults(results []SearchResult) []SearchResult {
	order := make([]string, 0, len(results))
	best := make(map[string]SearchResult, len(results))
	for _, r := range results {
		key := NormalizeURL(r.URL)
		existing, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = r
			continue
		}
		if betterResult(r, existing) {
			best[key] = r
		}
	}
	out := make([]SearchResult, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

func betterResult(candidate, incumbent SearchResult) bool {
	if candidate.RelevanceScore != incumbent.RelevanceScore {
		return candidate.RelevanceScore > incumbent.RelevanceScore
	}
	return len(candidate.Snippet) > len(incumbent.Snippet)
}

// LexicalRelevance is the fallback relevance heuristic used when a provider
// gives no score of its own: 0.5 if the query substring appears in the
// title, 0.3 if in the snippet, plus 0.1/0.05 per query word of length > 2
// found in title/snippet respectively, clamped to [0,1].
func LexicalRelevance(query, title, snippet string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(title)
	s := strings.ToLower(snippet)

	var score float64
	if q != "" && strings.Contains(t, q) {
		score += 0.5
	}
	if q != "" && strings.Contains(s, q) {
		score += 0.3
	}
	for _, word := range strings.Fields(q) {
		if len(word) <= 2 {
			continue
		}
		if strings.Contains(t, word) {
			score += 0.1
		}
		if strings.Contains(s, word) {
			score += 0.05
		}
	}
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// SignificantTokens extracts up to max non-stopword tokens of length > 2
// from text, used by both the forced-progress guard and forced-research
// topic synthesis.
func SignificantTokens(text string, max int) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, max)
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if len(f) <= 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
		if len(out) == max {
			break
		}
	}
	return out
}
