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
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"deepresearch/internal/telemetry"
	"deepresearch/log"
)

// defaultWeights are the per-provider fusion weights applied when a call's
// UnifiedSearchOptions.Weights does not override them.
var defaultWeights = map[string]float64{
	"google":     1.2,
	"tavily":     1.1,
	"langsearch": 1.15,
	"duckduckgo": 1.0,
	"context7":   1.3,
}

// scholarCapable, newsCapable and docCapable list which registered adapter
// names serve each categorical search. doc_search additionally falls back
// to a docs-biased web search filtered to a curated host allowlist.
var (
	scholarCapable = map[string]bool{"google": true, "langsearch": true, "tavily": true}
	newsCapable    = map[string]bool{"google": true, "langsearch": true, "tavily": true}
	docCapable     = map[string]bool{"context7": true, "langsearch": true}
)

// documentationHostPatterns are glob patterns (matched with doublestar)
// against a result URL's host, used to filter the doc_search web-search
// fallback down to documentation-looking sources.
var documentationHostPatterns = []string{
	"*.readthedocs.io",
	"developer.*.com",
	"docs.*.*",
	"*.github.io",
	"pkg.go.dev",
}

// Aggregator is the unified multi-source search aggregator (C2): parallel
// fan-out to registered adapters, score-weighted fusion, URL
// deduplication, and categorical routing.
type Aggregator struct {
	adapters map[string]Adapter
	weights  map[string]float64
	pool     *ants.Pool

	telemetry *telemetry.Provider
}

// Option configures an Aggregator at construction time.
type Option func(*Aggregator)

// WithWeights overrides the default per-provider fusion weights.
func WithWeights(weights map[string]float64) Option {
	return func(a *Aggregator) {
		for name, w := range weights {
			a.weights[name] = w
		}
	}
}

// WithTelemetry attaches a telemetry.Provider for fan-out spans and
// search-result counters. Omitting this option is equivalent to a no-op
// provider.
func WithTelemetry(p *telemetry.Provider) Option {
	return func(a *Aggregator) { a.telemetry = p }
}

// NewAggregator registers adapters under their ServiceName and builds a
// bounded worker pool for fan-out. maxConcurrency <= 0 falls back to a
// pool of 8 workers.
func NewAggregator(adapters []Adapter, maxConcurrency int, opts ...Option) (*Aggregator, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	pool, err := ants.NewPool(maxConcurrency)
	if err != nil {
		return nil, fmt.Errorf("search: build worker pool: %w", err)
	}

	a := &Aggregator{
		adapters:  make(map[string]Adapter, len(adapters)),
		weights:   make(map[string]float64, len(defaultWeights)),
		pool:      pool,
		telemetry: telemetry.NewNoop(),
	}
	for name, w := range defaultWeights {
		a.weights[name] = w
	}
	for _, ad := range adapters {
		a.adapters[ad.ServiceName()] = ad
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Close releases the aggregator's worker pool.
func (a *Aggregator) Close() {
	a.pool.Release()
}

type adapterResult struct {
	name    string
	weight  float64
	results []SearchResult
}

// Search implements C2's primary operation. When no requested adapter is
// registered and available, it returns []SearchResult{} without error; an
// empty options.Sources selects every registered adapter.
func (a *Aggregator) Search(ctx context.Context, query string, options UnifiedSearchOptions) ([]SearchResult, error) {
	selected := a.selectAdapters(options.Sources)
	if len(selected) == 0 {
		return []SearchResult{}, nil
	}

	perAdapterOpts := options.SearchOptions
	if options.MaxResultsPerSource > 0 {
		perAdapterOpts.MaxResults = options.MaxResultsPerSource
	} else {
		perAdapterOpts.MaxResults = DefaultUnifiedSearchOptions().MaxResultsPerSource
	}
	if lang := canonicalLanguage(perAdapterOpts.Language); lang != "" {
		perAdapterOpts.Language = lang
	}

	fanoutCtx, span := a.telemetry.StartSpan(ctx, telemetry.SpanAggregatorFanOut)
	outcomes := a.fanOut(fanoutCtx, selected, query, perAdapterOpts)
	span.End()
	for i := range outcomes {
		if w, ok := options.Weights[outcomes[i].name]; ok {
			outcomes[i].weight = w
		}
	}
	for _, o := range outcomes {
		a.telemetry.RecordSearchResults(ctx, o.name, len(o.results))
	}

	strategy := options.CombineStrategy
	if strategy == "" {
		strategy = CombineWeighted
	}
	combined := combine(strategy, outcomes, options.Sources)

	if options.Deduplicate {
		combined = DedupeResults(combined)
	}

	max := options.MaxResults
	if max <= 0 {
		max = DefaultUnifiedSearchOptions().MaxResults
	}
	if len(combined) > max {
		combined = combined[:max]
	}
	return combined, nil
}

// selectAdapters intersects the requested source tags (all available
// adapters when empty) with the set of adapters reporting IsAvailable().
func (a *Aggregator) selectAdapters(sources []string) []Adapter {
	var names []string
	if len(sources) == 0 {
		for name := range a.adapters {
			names = append(names, name)
		}
	} else {
		names = sources
	}

	selected := make([]Adapter, 0, len(names))
	for _, name := range names {
		ad, ok := a.adapters[name]
		if !ok || !ad.IsAvailable() {
			continue
		}
		selected = append(selected, ad)
	}
	return selected
}

// fanOut dispatches query to every selected adapter concurrently through
// the bounded ants pool, with the goroutines themselves coordinated by an
// errgroup sharing one derived, cancellable context — so a caller-side
// cancellation reaches every in-flight adapter call at once. Each adapter's
// own errors/panics are isolated and never propagated as a group error:
// one bad provider yields an empty result set for itself, logged, and
// never sinks the others or aborts the aggregation.
func (a *Aggregator) fanOut(ctx context.Context, adapters []Adapter, query string, options SearchOptions) []adapterResult {
	outcomes := make([]adapterResult, len(adapters))
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, adapter := range adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			done := make(chan struct{})
			submitErr := a.pool.Submit(func() {
				defer close(done)
				defer func() {
					if r := recover(); r != nil {
						log.Errorf("search: adapter %s panicked: %v", adapter.ServiceName(), r)
						mu.Lock()
						outcomes[i] = adapterResult{name: adapter.ServiceName(), weight: a.weightFor(adapter.ServiceName())}
						mu.Unlock()
					}
				}()

				results, err := adapter.Search(gctx, query, options)
				if err != nil {
					log.Warnf("search: adapter %s failed: %v", adapter.ServiceName(), err)
					results = nil
				}
				mu.Lock()
				outcomes[i] = adapterResult{name: adapter.ServiceName(), weight: a.weightFor(adapter.ServiceName()), results: results}
				mu.Unlock()
			})
			if submitErr != nil {
				log.Errorf("search: could not schedule adapter %s: %v", adapter.ServiceName(), submitErr)
				mu.Lock()
				outcomes[i] = adapterResult{name: adapter.ServiceName(), weight: a.weightFor(adapter.ServiceName())}
				mu.Unlock()
				return nil
			}
			<-done
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (a *Aggregator) weightFor(name string) float64 {
	if w, ok := a.weights[name]; ok {
		return w
	}
	return 1.0
}

// combine fuses per-adapter outcomes according to strategy. sourceOrder is
// the caller-supplied options.Sources, used only to break weighted-score
// ties deterministically (§9's design note).
func combine(strategy CombineStrategy, outcomes []adapterResult, sourceOrder []string) []SearchResult {
	switch strategy {
	case CombineMerge:
		return combineMerge(outcomes)
	case CombineInterleave:
		return combineInterleave(outcomes)
	default:
		return combineWeighted(outcomes, sourceOrder)
	}
}

func combineMerge(outcomes []adapterResult) []SearchResult {
	var all []SearchResult
	var weights []float64
	for _, o := range outcomes {
		for _, r := range o.results {
			all = append(all, r)
			weights = append(weights, o.weight)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].RelevanceScore*weights[i] > all[j].RelevanceScore*weights[j]
	})
	return all
}

func combineInterleave(outcomes []adapterResult) []SearchResult {
	var out []SearchResult
	maxLen := 0
	for _, o := range outcomes {
		if len(o.results) > maxLen {
			maxLen = len(o.results)
		}
	}
	for i := 0; i < maxLen; i++ {
		for _, o := range outcomes {
			if i < len(o.results) {
				out = append(out, o.results[i])
			}
		}
	}
	return out
}

type weightedGroup struct {
	scoreSum  float64
	weightSum float64
	rep       SearchResult
	sources   []string
}

func combineWeighted(outcomes []adapterResult, sourceOrder []string) []SearchResult {
	order := make([]string, 0)
	groups := make(map[string]*weightedGroup)

	rank := make(map[string]int, len(sourceOrder))
	for i, s := range sourceOrder {
		rank[s] = i
	}

	for _, o := range outcomes {
		for _, r := range o.results {
			key := NormalizeURL(r.URL)
			g, ok := groups[key]
			if !ok {
				g = &weightedGroup{rep: r}
				groups[key] = g
				order = append(order, key)
			}
			g.scoreSum += r.RelevanceScore * o.weight
			g.weightSum += o.weight
			g.sources = append(g.sources, o.name)
			if len(r.Snippet) > len(g.rep.Snippet) {
				g.rep = r
			}
		}
	}

	out := make([]SearchResult, 0, len(order))
	for _, key := range order {
		g := groups[key]
		combinedScore := 0.0
		if g.weightSum > 0 {
			combinedScore = g.scoreSum / g.weightSum
		}
		rep := g.rep
		rep.RelevanceScore = combinedScore
		if rep.Metadata == nil {
			rep.Metadata = map[string]any{}
		}
		rep.Metadata["sources"] = g.sources
		out = append(out, rep)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		return sourceRank(out[i], rank) < sourceRank(out[j], rank)
	})
	return out
}

func sourceRank(r SearchResult, rank map[string]int) int {
	sources, _ := r.Metadata["sources"].([]string)
	best := len(rank) + 1
	for _, s := range sources {
		if rk, ok := rank[s]; ok && rk < best {
			best = rk
		}
	}
	return best
}

// SearchScholar restricts dispatch to scholar-capable adapters.
func (a *Aggregator) SearchScholar(ctx context.Context, query string, options UnifiedSearchOptions) ([]SearchResult, error) {
	options.SearchOptions.Type = TypeScholar
	options.Sources = capableSources(options.Sources, a.adapters, scholarCapable)
	return a.Search(ctx, query, options)
}

// SearchNews restricts dispatch to news-capable adapters.
func (a *Aggregator) SearchNews(ctx context.Context, query string, options UnifiedSearchOptions) ([]SearchResult, error) {
	options.SearchOptions.Type = TypeNews
	options.Sources = capableSources(options.Sources, a.adapters, newsCapable)
	return a.Search(ctx, query, options)
}

// SearchDocumentation dispatches to Context7 and LangSearch[type=docs],
// plus a docs-biased web search fallback whose results are filtered down to
// a curated documentation-host allowlist before being appended to the
// primary results. library, if non-empty, is prepended to the query as a
// hint for the Context7 resolver.
func (a *Aggregator) SearchDocumentation(ctx context.Context, query, library string, options UnifiedSearchOptions) ([]SearchResult, error) {
	effectiveQuery := query
	if library != "" {
		effectiveQuery = library + " " + query
	}

	options.SearchOptions.Type = TypeDocumentation
	options.Sources = capableSources(options.Sources, a.adapters, docCapable)
	primary, err := a.Search(ctx, effectiveQuery, options)
	if err != nil {
		return nil, err
	}

	fallbackOpts := options
	fallbackOpts.Sources = capableSources(nil, a.adapters, map[string]bool{"google": true, "duckduckgo": true})
	fallbackOpts.SearchOptions.Type = TypeWeb
	fallback, err := a.Search(ctx, effectiveQuery+" documentation", fallbackOpts)
	if err != nil {
		log.Warnf("search: doc_search web fallback failed: %v", err)
		fallback = nil
	}
	fallback = filterDocumentationHosts(fallback)

	combined := append(primary, fallback...)
	if options.Deduplicate {
		combined = DedupeResults(combined)
	}
	return combined, nil
}

func filterDocumentationHosts(results []SearchResult) []SearchResult {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		u, err := url.Parse(r.URL)
		if err != nil || u.Host == "" {
			continue
		}
		for _, pattern := range documentationHostPatterns {
			if ok, _ := doublestar.Match(pattern, strings.ToLower(u.Host)); ok {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func capableSources(requested []string, adapters map[string]Adapter, capable map[string]bool) []string {
	var base []string
	if len(requested) > 0 {
		base = requested
	} else {
		for name := range adapters {
			base = append(base, name)
		}
	}
	out := make([]string, 0, len(base))
	for _, name := range base {
		if capable[name] {
			out = append(out, name)
		}
	}
	return out
}

// canonicalLanguage validates/canonicalizes a BCP-47 language tag. An
// unparsable tag is dropped (empty return) rather than sent upstream
// malformed.
func canonicalLanguage(raw string) string {
	if raw == "" {
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return ""
	}
	return tag.String()
}
