//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

package toolcall

import (
	"fmt"
	"strings"

	"deepresearch/search"
)

const maxFormattedResults = 8

// FormatResults implements §4.4's result-formatting contract: search
// results handed back to the LM are Markdown-like blocks with a header,
// numbered items, and a trailing note for anything truncated. Empty result
// sets yield an explicit "No ... results found" string, never a silent
// empty string.
func FormatResults(kind string, results []search.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No %s results found.", kind)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("## %s Search Results (%d found)\n", kind, len(results)))

	shown := results
	if len(shown) > maxFormattedResults {
		shown = shown[:maxFormattedResults]
	}
	for i, r := range shown {
		b.WriteString(fmt.Sprintf(
			"%d. %s\n   URL: %s\n   Source: %s\n   Snippet: %s\n   Relevance: %.0f%%\n",
			i+1, nonEmpty(r.Title, "(untitled)"), r.URL, r.Source, nonEmpty(r.Snippet, "(no snippet)"), r.RelevanceScore*100,
		))
	}
	if remaining := len(results) - len(shown); remaining > 0 {
		b.WriteString(fmt.Sprintf("... and %d more result(s) not shown.\n", remaining))
	}
	return b.String()
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
