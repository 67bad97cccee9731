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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilyAdapter wraps the Tavily search API. Available iff an API key is
// configured. Unlike Google/DuckDuckGo, Tavily's own relevance score is
// used directly rather than the lexical heuristic.
type TavilyAdapter struct {
	BaseAdapter

	apiKey string
	client *http.Client
}

// NewTavilyAdapter builds a Tavily adapter.
func NewTavilyAdapter(apiKey string) *TavilyAdapter {
	a := &TavilyAdapter{apiKey: apiKey, client: &http.Client{Timeout: 15 * time.Second}}
	a.BaseAdapter = BaseAdapter{Name: "tavily", Available: func() bool { return apiKey != "" }}
	return a
}

type tavilyRequest struct {
	APIKey             string   `json:"api_key"`
	Query              string   `json:"query"`
	SearchDepth        string   `json:"search_depth"`
	Topic              string   `json:"topic"`
	MaxResults         int      `json:"max_results"`
	IncludeAnswer      bool     `json:"include_answer"`
	IncludeRawContent  bool     `json:"include_raw_content"`
	IncludeImages      bool     `json:"include_images"`
	IncludeDomains     []string `json:"include_domains,omitempty"`
	ExcludeDomains     []string `json:"exclude_domains,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search implements Adapter.
func (a *TavilyAdapter) Search(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error) {
	return a.Run(ctx, query, options, a.performSearch)
}

func (a *TavilyAdapter) performSearch(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error) {
	depth := "basic"
	maxResults := options.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	payload := tavilyRequest{
		APIKey:      a.apiKey,
		Query:       query,
		SearchDepth: depth,
		Topic:       string(options.Type),
		MaxResults:  maxResults,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tavily: status %d: %s", resp.StatusCode, string(b))
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, SearchResult{
			Title: r.Title, URL: r.URL, Snippet: r.Content,
			Source: "tavily", RelevanceScore: r.Score,
		})
	}
	return results, nil
}
