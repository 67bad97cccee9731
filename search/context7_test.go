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

func TestNewContext7Adapter_AlwaysAvailable(t *testing.T) {
	a := NewContext7Adapter()
	assert.True(t, a.IsAvailable())
	assert.Equal(t, "context7", a.ServiceName())
}
