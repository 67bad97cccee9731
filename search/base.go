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
	"errors"
	"time"

	"deepresearch/log"
)

// BaseAdapter contributes the behavior common to every adapter: a
// cancellation token composed with options.Timeout, dedup of results
// returned within a single call, and an availability predicate driven by
// a caller-supplied check. Concrete adapters embed BaseAdapter and
// implement only performSearch via the Run method.
type BaseAdapter struct {
	Name      string
	Available func() bool
}

// ServiceName implements Adapter.
func (b *BaseAdapter) ServiceName() string {
	return b.Name
}

// IsAvailable implements Adapter.
func (b *BaseAdapter) IsAvailable() bool {
	if b.Available == nil {
		return true
	}
	return b.Available()
}

// performSearchFunc is the shape every concrete adapter supplies: the
// actual network call, free to throw on any real failure. Cancellation is
// handled by Run, not by the adapter itself.
type performSearchFunc func(ctx context.Context, query string, options SearchOptions) ([]SearchResult, error)

// Run wraps a concrete performSearch implementation with the shared base
// behavior: a timeout derived from options.Timeout (falling back to the
// package default), cancellation treated as an empty-result success
// (logged as a warning) rather than an error, and post-filtering dedup of
// whatever the adapter returned.
func (b *BaseAdapter) Run(ctx context.Context, query string, options SearchOptions, perform performSearchFunc) ([]SearchResult, error) {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultSearchOptions().Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Millisecond)
	defer cancel()

	results, err := perform(ctx, query, options)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			log.Warnf("%s: search cancelled/timed out for query %q: %v", b.Name, query, err)
			return []SearchResult{}, nil
		}
		return nil, err
	}
	return DedupeResults(results), nil
}
