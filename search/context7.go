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

const (
	context7ResolveEndpoint = "https://context7.com/api/v1/resolve"
	context7DocsEndpoint    = "https://context7.com/api/v1/docs"
	context7TokenBudget     = 5000
)

// Context7Adapter wraps a documentation-oriented backend via a
// resolve-then-fetch pattern: resolve a free-form library name to a
// library id, then fetch docs for a topic under a token budget. Always
// marked available; it has no API key requirement in this integration.
type Context7Adapter struct {
	BaseAdapter

	client *http.Client
}

// NewContext7Adapter builds the documentation adapter.
func NewContext7Adapter() *Context7Adapter {
	a := &Context7Adapter{client: &http.Client{Timeout: 15 * time.Second}}
	a.BaseAdapter = BaseAdapter{Name: "context7", Available: func() bool { return true }}
	return a
}

type context7ResolveResponse struct {
	Libraries []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"libraries"`
}

type context7DocsResponse struct {
	Snippets []struct {
		Title   string `json:"title"`
		Source  string `json:"source"`
		Content string `json:"content"`
	} `json:"snippets"`
}

// Search implements Adapter. query is treated as a library name to resolve
// and then fetch documentation for.
func (a *Context7Adapter) Search(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error) {
	return a.Run(ctx, query, options, a.performSearch)
}

func (a *Context7Adapter) performSearch(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error) {
	libraryID, err := a.resolve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("context7: resolve: %w", err)
	}
	if libraryID == "" {
		return []SearchResult{}, nil
	}
	return a.fetchDocs(ctx, libraryID, query)
}

func (a *Context7Adapter) resolve(ctx context.Context, name string) (string, error) {
	q := url.Values{}
	q.Set("libraryName", name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, context7ResolveEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var parsed context7ResolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Libraries) == 0 {
		return "", nil
	}
	return parsed.Libraries[0].ID, nil
}

func (a *Context7Adapter) fetchDocs(ctx context.Context, libraryID, topic string) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("libraryId", libraryID)
	q.Set("topic", topic)
	q.Set("tokens", fmt.Sprintf("%d", context7TokenBudget))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, context7DocsEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var parsed context7DocsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(parsed.Snippets))
	for _, s := range parsed.Snippets {
		results = append(results, SearchResult{
			Title: s.Title, URL: s.Source, Snippet: s.Content,
			Source: "context7", RelevanceScore: LexicalRelevance(topic, s.Title, s.Content),
		})
	}
	return results, nil
}
