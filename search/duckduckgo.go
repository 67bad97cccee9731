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
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"deepresearch/log"
)

// DuckDuckGoAdapter requires no API key and is always registered. It tries
// the instant-answer JSON endpoint first; if that yields nothing it scrapes
// the standard HTML endpoint; if that fails it tries the "lite" endpoint.
type DuckDuckGoAdapter struct {
	BaseAdapter

	client *http.Client
}

// NewDuckDuckGoAdapter builds the keyless fallback adapter.
func NewDuckDuckGoAdapter() *DuckDuckGoAdapter {
	a := &DuckDuckGoAdapter{client: &http.Client{Timeout: 15 * time.Second}}
	a.BaseAdapter = BaseAdapter{Name: "duckduckgo", Available: func() bool { return true }}
	return a
}

// Search implements Adapter.
func (a *DuckDuckGoAdapter) Search(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error) {
	return a.Run(ctx, query, options, a.performSearch)
}

func (a *DuckDuckGoAdapter) performSearch(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error) {
	if results, err := a.instantAnswer(ctx, query); err != nil {
		log.Warnf("duckduckgo: instant-answer stage failed: %v", err)
	} else if len(results) > 0 {
		return results, nil
	}

	results, err := a.htmlEndpoint(ctx, "https://html.duckduckgo.com/html/", query)
	if err == nil && len(results) > 0 {
		return results, nil
	}
	if err != nil {
		log.Warnf("duckduckgo: html stage failed: %v", err)
	}

	return a.htmlEndpoint(ctx, "https://lite.duckduckgo.com/lite/", query)
}

type duckduckgoInstantResponse struct {
	Abstract       string `json:"Abstract"`
	AbstractURL    string `json:"AbstractURL"`
	AbstractSource string `json:"AbstractSource"`
	Answer         string `json:"Answer"`
	AnswerType     string `json:"AnswerType"`
	Definition     string `json:"Definition"`
	DefinitionURL  string `json:"DefinitionURL"`
	RelatedTopics  []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (a *DuckDuckGoAdapter) instantAnswer(ctx context.Context, query string) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.duckduckgo.com/?"+q.Encode(), nil)
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

	var parsed duckduckgoInstantResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	var results []SearchResult
	if parsed.Abstract != "" {
		results = append(results, SearchResult{
			Title: parsed.AbstractSource, URL: parsed.AbstractURL, Snippet: parsed.Abstract,
			Source: "duckduckgo", RelevanceScore: LexicalRelevance(query, parsed.AbstractSource, parsed.Abstract),
		})
	}
	if parsed.Answer != "" {
		results = append(results, SearchResult{
			Title: parsed.AnswerType, URL: "https://duckduckgo.com/?q=" + url.QueryEscape(query), Snippet: parsed.Answer,
			Source: "duckduckgo", RelevanceScore: LexicalRelevance(query, parsed.AnswerType, parsed.Answer),
		})
	}
	if parsed.Definition != "" {
		results = append(results, SearchResult{
			Title: "Definition", URL: parsed.DefinitionURL, Snippet: parsed.Definition,
			Source: "duckduckgo", RelevanceScore: LexicalRelevance(query, "Definition", parsed.Definition),
		})
	}
	for _, rt := range parsed.RelatedTopics {
		if rt.Text == "" || rt.FirstURL == "" {
			continue
		}
		results = append(results, SearchResult{
			Title: rt.Text, URL: rt.FirstURL, Snippet: rt.Text,
			Source: "duckduckgo", RelevanceScore: LexicalRelevance(query, rt.Text, rt.Text),
		})
	}
	return results, nil
}

func (a *DuckDuckGoAdapter) htmlEndpoint(ctx context.Context, endpoint, query string) ([]SearchResult, error) {
	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = form.Encode()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing duckduckgo html: %w", err)
	}
	return parseDDGResultNodes(doc, query), nil
}

// parseDDGResultNodes extracts SearchResults from the HTML/lite result
// list nodes, each carrying a ".result__a" title/link and a
// ".result__snippet" summary.
func parseDDGResultNodes(doc *goquery.Document, query string) []SearchResult {
	var results []SearchResult
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, exists := link.Attr("href")
		if !exists || title == "" {
			return
		}
		href = unwrapDDGRedirect(href)
		if href == "" {
			return
		}

		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		results = append(results, SearchResult{
			Title: title, URL: href, Snippet: snippet,
			Source: "duckduckgo", RelevanceScore: LexicalRelevance(query, title, snippet),
		})
	})
	return results
}

// unwrapDDGRedirect extracts the true destination URL from DuckDuckGo's
// "/l/?uddg=..." link-redirect wrapper, used on both the html and lite
// endpoints in place of direct hrefs.
func unwrapDDGRedirect(href string) string {
	if strings.Contains(href, "duckduckgo.com/l/") || strings.Contains(href, "uddg=") {
		u, err := url.Parse(href)
		if err != nil {
			return ""
		}
		if uddg := u.Query().Get("uddg"); uddg != "" {
			return uddg
		}
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return ""
}
