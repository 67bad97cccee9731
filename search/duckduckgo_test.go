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
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDuckDuckGoAdapter_AlwaysAvailable(t *testing.T) {
	a := NewDuckDuckGoAdapter()
	assert.True(t, a.IsAvailable())
	assert.Equal(t, "duckduckgo", a.ServiceName())
}

const sampleDDGResultHTML = `
<div class="result results_links results_links_deep web-result">
  <div class="links_main links_deep result__body">
    <h2 class="result__title">
      <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgolang.org%2Fdoc%2F&amp;rut=x">The Go Programming Language</a>
    </h2>
    <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgolang.org%2Fdoc%2F">Documentation for <b>Go</b>, an open source language.</a>
  </div>
</div>`

func TestParseDDGResultNodes_ExtractsTitleURLAndSnippet(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sampleDDGResultHTML))
	require.NoError(t, err)

	results := parseDDGResultNodes(doc, "go programming")

	require.Len(t, results, 1)
	assert.Equal(t, "The Go Programming Language", results[0].Title)
	assert.Equal(t, "https://golang.org/doc/", results[0].URL)
	assert.Contains(t, results[0].Snippet, "Documentation for")
	assert.Equal(t, "duckduckgo", results[0].Source)
}

func TestParseDDGResultNodes_SkipsNodesMissingHref(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="result"><a class="result__a">No href</a></div>`))
	require.NoError(t, err)

	assert.Empty(t, parseDDGResultNodes(doc, "q"))
}

func TestUnwrapDDGRedirect(t *testing.T) {
	assert.Equal(t, "https://example.com/page",
		unwrapDDGRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=x"))
	assert.Equal(t, "https://example.com/", unwrapDDGRedirect("https://example.com/"))
	assert.Equal(t, "https://example.com/", unwrapDDGRedirect("//example.com/"))
	assert.Equal(t, "", unwrapDDGRedirect("/relative/path"))
}
