//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

// Package search implements the unified multi-source search aggregator: a
// uniform interface over heterogeneous external search APIs (C1), and the
// fan-out/fusion layer that sits on top of them (C2).
package search

import "context"

// SourceType selects which categorical flavor of search a call is for.
// The aggregator routes categorical calls (searchScholar, searchNews,
// searchDocumentation) to adapters listed in its own static capability
// tables; adapters do not advertise which types they serve.
type SourceType string

// Recognized source types.
const (
	TypeWeb           SourceType = "web"
	TypeScholar       SourceType = "scholar"
	TypeNews          SourceType = "news"
	TypeDocumentation SourceType = "documentation"
	TypeCode          SourceType = "code"
	TypeImages        SourceType = "images"
)

// CombineStrategy selects how the aggregator fuses per-adapter result sets.
type CombineStrategy string

// Recognized combine strategies.
const (
	CombineMerge      CombineStrategy = "merge"
	CombineInterleave CombineStrategy = "interleave"
	CombineWeighted   CombineStrategy = "weighted"
)

// SearchResult is a single hit from any provider, normalized to a common
// shape. URL is the identity key for deduplication, after normalization
// (scheme and host lowercased, trailing slash stripped, fragment removed).
type SearchResult struct {
	Title          string
	URL            string
	Snippet        string
	Source         string
	RelevanceScore float64
	Metadata       map[string]any
}

// SearchOptions is the request shape passed to a single adapter's Search.
type SearchOptions struct {
	MaxResults   int
	Timeout      int // milliseconds
	Type         SourceType
	Language     string
	DateRestrict string
	SiteSearch   string
	FileType     string
}

// DefaultSearchOptions returns the documented defaults: 10 results, 10s
// timeout, web type.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxResults: 10,
		Timeout:    10000,
		Type:       TypeWeb,
	}
}

// UnifiedSearchOptions extends SearchOptions with aggregation controls.
type UnifiedSearchOptions struct {
	SearchOptions

	Sources             []string
	CombineStrategy     CombineStrategy
	Weights             map[string]float64
	Deduplicate         bool
	MaxResultsPerSource int
}

// DefaultUnifiedSearchOptions returns the documented aggregator defaults:
// weighted combine, dedup on, 10 results per source, 20 results overall.
func DefaultUnifiedSearchOptions() UnifiedSearchOptions {
	opts := DefaultSearchOptions()
	opts.MaxResults = 20
	return UnifiedSearchOptions{
		SearchOptions:       opts,
		CombineStrategy:     CombineWeighted,
		Deduplicate:         true,
		MaxResultsPerSource: 10,
	}
}

// Adapter is a single concrete integration with an external search service.
type Adapter interface {
	Search(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error)
	IsAvailable() bool
	ServiceName() string
}
