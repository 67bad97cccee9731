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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const googleCSEEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleAdapter wraps the Google Custom Search JSON API. Available iff an
// API key and a CSE id are both configured. It also serves the Scholar,
// News and Images categorical variants by adjusting the request before
// dispatch.
type GoogleAdapter struct {
	BaseAdapter

	apiKey string
	cx     string
	client *http.Client
}

// NewGoogleAdapter builds a Google Custom Search adapter. apiKey/cx empty
// means IsAvailable() reports false and the aggregator skips it.
func NewGoogleAdapter(apiKey, cx string) *GoogleAdapter {
	a := &GoogleAdapter{
		apiKey: apiKey,
		cx:     cx,
		client: &http.Client{Timeout: 15 * time.Second},
	}
	a.BaseAdapter = BaseAdapter{
		Name:      "google",
		Available: func() bool { return apiKey != "" && cx != "" },
	}
	return a
}

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search implements Adapter.
func (a *GoogleAdapter) Search(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error) {
	return a.Run(ctx, query, options, a.performSearch)
}

func (a *GoogleAdapter) performSearch(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("key", a.apiKey)
	q.Set("cx", a.cx)
	q.Set("q", a.effectiveQuery(query, options))
	if options.MaxResults > 0 && options.MaxResults <= 10 {
		q.Set("num", fmt.Sprintf("%d", options.MaxResults))
	}
	switch options.Type {
	case TypeScholar:
		q.Set("siteSearch", "scholar.google.com")
	case TypeNews:
		q.Set("sort", "date")
		q.Set("tbm", "nws")
	case TypeImages:
		q.Set("searchType", "image")
	}
	if options.DateRestrict != "" {
		q.Set("dateRestrict", options.DateRestrict)
	}
	if options.SiteSearch != "" {
		q.Set("siteSearch", options.SiteSearch)
	}
	if options.FileType != "" {
		q.Set("fileType", options.FileType)
	}
	if options.Language != "" {
		q.Set("lr", "lang_"+options.Language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleCSEEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google: build request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("google: status %d", resp.StatusCode)
	}

	var parsed googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("google: decode response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, SearchResult{
			Title:          item.Title,
			URL:            item.Link,
			Snippet:        item.Snippet,
			Source:         "google",
			RelevanceScore: LexicalRelevance(query, item.Title, item.Snippet),
		})
	}
	return results, nil
}

// effectiveQuery returns the query unchanged: every categorical variant is
// expressed through request parameters in performSearch.
func (a *GoogleAdapter) effectiveQuery(query string, options SearchOptions) string {
	return query
}
