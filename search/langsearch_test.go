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

func TestNewLangSearchAdapter_Availability(t *testing.T) {
	assert.False(t, NewLangSearchAdapter("").IsAvailable())
	assert.True(t, NewLangSearchAdapter("key").IsAvailable())
	assert.Equal(t, "langsearch", NewLangSearchAdapter("key").ServiceName())
}

func TestLangSearchEndpoints_CoverAllRoutedTypes(t *testing.T) {
	for _, typ := range []SourceType{TypeWeb, TypeScholar, TypeNews, TypeCode, TypeDocumentation} {
		endpoint, ok := langSearchEndpoints[typ]
		assert.True(t, ok, "missing endpoint for type %q", typ)
		assert.NotEmpty(t, endpoint)
	}
}
