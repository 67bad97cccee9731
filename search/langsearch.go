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

// langSearchEndpoints maps a categorical SourceType to the distinct path
// LangSearch exposes for it.
var langSearchEndpoints = map[SourceType]string{
	TypeWeb:           "https://api.langsearch.com/v1/web-search",
	TypeScholar:        "https://api.langsearch.com/v1/scholar-search",
	TypeNews:          "https://api.langsearch.com/v1/news-search",
	TypeCode:          "https://api.langsearch.com/v1/code-search",
	TypeDocumentation: "https://api.langsearch.com/v1/doc-search",
}

// LangSearchAdapter wraps the LangSearch API. Available iff an API key is
// configured. Passes through the provider's own relevance_score.
type LangSearchAdapter struct {
	BaseAdapter

	apiKey string
	client *http.Client
}

// NewLangSearchAdapter builds a LangSearch adapter.
func NewLangSearchAdapter(apiKey string) *LangSearchAdapter {
	a := &LangSearchAdapter{apiKey: apiKey, client: &http.Client{Timeout: 15 * time.Second}}
	a.BaseAdapter = BaseAdapter{Name: "langsearch", Available: func() bool { return apiKey != "" }}
	return a
}

type langSearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type langSearchResponse struct {
	Results []struct {
		Title          string  `json:"title"`
		URL            string  `json:"url"`
		Snippet        string  `json:"snippet"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Search implements Adapter.
func (a *LangSearchAdapter) Search(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error) {
	return a.Run(ctx, query, options, a.performSearch)
}

func (a *LangSearchAdapter) performSearch(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error) {
	endpoint, ok := langSearchEndpoints[options.Type]
	if !ok {
		endpoint = langSearchEndpoints[TypeWeb]
	}

	maxResults := options.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	body, err := json.Marshal(langSearchRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("langsearch: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("langsearch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("langsearch: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("langsearch: status %d: %s", resp.StatusCode, string(b))
	}

	var parsed langSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("langsearch: decode response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, SearchResult{
			Title: r.Title, URL: r.URL, Snippet: r.Snippet,
			Source: "langsearch", RelevanceScore: r.RelevanceScore,
		})
	}
	return results, nil
}
