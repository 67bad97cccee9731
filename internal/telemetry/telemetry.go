//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

// Package telemetry wraps OpenTelemetry tracing and metrics behind a small
// Provider so that the research orchestrator and search aggregator can emit
// spans and counters without taking a hard dependency on any particular
// exporter or collector. Telemetry is disabled (no-op) unless NewProvider
// is called; without an endpoint option NewProvider exports to the
// OTEL_EXPORTER_OTLP_* environment endpoint or the protocol's localhost
// default. It is never allowed to block or fail a research invocation on
// exporter errors.
package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlpmetricgrpc "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otlpmetrichttp "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otlptracegrpc "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"deepresearch/log"
)

// Span names for the orchestrator's pipeline phases, used consistently so
// that traces from different invocations are comparable.
const (
	SpanClarifyPhase    = "research.phase.clarify"
	SpanBriefPhase       = "research.phase.brief"
	SpanResearchPhase   = "research.phase.research"
	SpanReportPhase      = "research.phase.report"
	SpanSupervisorIter   = "research.supervisor.iteration"
	SpanSubAgentIter     = "research.subagent.iteration"
	SpanAggregatorFanOut = "search.aggregator.fanout"
)

// Provider bundles a Tracer and Meter plus the counters the orchestrator
// and aggregator report against. A zero-value-equivalent Provider built by
// NewNoop is always safe to use.
type Provider struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	toolCallsDispatched metric.Int64Counter
	searchResultsReturn metric.Int64Counter
	forcedProgressCount metric.Int64Counter

	shutdown func(context.Context) error
}

// Option configures provider construction.
type Option func(*options)

type options struct {
	serviceName string
	protocol    string
	endpoint    string
	endpointURL string
	headers     map[string]string
	insecure    bool
}

// WithServiceName sets the resource service.name attribute.
func WithServiceName(name string) Option { return func(o *options) { o.serviceName = name } }

// WithProtocol selects "grpc" (default) or "http" OTLP transport.
func WithProtocol(protocol string) Option { return func(o *options) { o.protocol = protocol } }

// WithEndpoint sets the host:port OTLP endpoint (no scheme).
func WithEndpoint(endpoint string) Option { return func(o *options) { o.endpoint = endpoint } }

// WithEndpointURL sets a full URL endpoint, overriding WithEndpoint's host
// and deriving a URL path for the HTTP trace exporter. The metric exporters
// use only the URL's host:port.
func WithEndpointURL(u string) Option { return func(o *options) { o.endpointURL = u } }

// WithHeaders sets extra OTLP exporter headers (e.g. collector auth).
func WithHeaders(headers map[string]string) Option { return func(o *options) { o.headers = headers } }

// WithInsecure disables TLS for the OTLP transport (local/dev collectors).
func WithInsecure(insecure bool) Option { return func(o *options) { o.insecure = insecure } }

// NewNoop returns a Provider backed by OpenTelemetry's no-op implementations.
// This is the default when the caller does not configure an exporter.
func NewNoop() *Provider {
	p := &Provider{Tracer: trace.NewNoopTracerProvider().Tracer("deepresearch"), Meter: noop.NewMeterProvider().Meter("deepresearch")}
	p.registerInstruments()
	return p
}

// NewProvider builds a Provider exporting traces and metrics over OTLP.
// Any failure to construct an exporter degrades to a no-op provider rather
// than failing the caller — telemetry is never load-bearing.
func NewProvider(ctx context.Context, opts ...Option) (*Provider, error) {
	cfg := options{serviceName: "deepresearch", protocol: "grpc"}
	for _, opt := range opts {
		opt(&cfg)
	}

	tracerProvider, traceShutdown, err := buildTracerProvider(ctx, cfg)
	if err != nil {
		log.Warnf("telemetry: falling back to no-op tracer: %v", err)
		return NewNoop(), nil
	}
	meterProvider, metricShutdown, err := buildMeterProvider(ctx, cfg)
	if err != nil {
		log.Warnf("telemetry: falling back to no-op meter: %v", err)
		_ = traceShutdown(ctx)
		return NewNoop(), nil
	}

	p := &Provider{
		Tracer: tracerProvider.Tracer(cfg.serviceName),
		Meter:  meterProvider.Meter(cfg.serviceName),
		shutdown: func(ctx context.Context) error {
			err1 := traceShutdown(ctx)
			err2 := metricShutdown(ctx)
			if err1 != nil {
				return err1
			}
			return err2
		},
	}
	p.registerInstruments()
	return p, nil
}

func (p *Provider) registerInstruments() {
	var err error
	p.toolCallsDispatched, err = p.Meter.Int64Counter("research.tool_calls_dispatched")
	if err != nil {
		log.Warnf("telemetry: register tool_calls_dispatched counter: %v", err)
	}
	p.searchResultsReturn, err = p.Meter.Int64Counter("research.search_results_returned")
	if err != nil {
		log.Warnf("telemetry: register search_results_returned counter: %v", err)
	}
	p.forcedProgressCount, err = p.Meter.Int64Counter("research.forced_progress_triggers")
	if err != nil {
		log.Warnf("telemetry: register forced_progress_triggers counter: %v", err)
	}
}

// Shutdown flushes and releases exporter resources. Safe to call on a
// no-op Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// RecordToolCall increments the dispatched-tool-calls counter.
func (p *Provider) RecordToolCall(ctx context.Context, toolName string) {
	if p == nil || p.toolCallsDispatched == nil {
		return
	}
	p.toolCallsDispatched.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", toolName)))
}

// RecordSearchResults increments the returned-search-results counter.
func (p *Provider) RecordSearchResults(ctx context.Context, source string, n int) {
	if p == nil || p.searchResultsReturn == nil || n == 0 {
		return
	}
	p.searchResultsReturn.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", source)))
}

// RecordForcedProgress increments the forced-progress-guard trigger counter.
func (p *Provider) RecordForcedProgress(ctx context.Context) {
	if p == nil || p.forcedProgressCount == nil {
		return
	}
	p.forcedProgressCount.Add(ctx, 1)
}

// StartSpan starts a span under this provider's Tracer, falling back to a
// usable no-op span if the Provider itself is nil.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if p == nil || p.Tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func buildTracerProvider(ctx context.Context, cfg options) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	endpoint, path := resolveEndpoint(cfg, tracesEndpoint(cfg.protocol))

	var exporter sdktrace.SpanExporter
	var err error
	switch cfg.protocol {
	case "http":
		httpOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if path != "" {
			httpOpts = append(httpOpts, otlptracehttp.WithURLPath(path))
		}
		if len(cfg.headers) > 0 {
			httpOpts = append(httpOpts, otlptracehttp.WithHeaders(cfg.headers))
		}
		if cfg.insecure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, httpOpts...)
	default:
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if len(cfg.headers) > 0 {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithHeaders(cfg.headers))
		}
		if cfg.insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, grpcOpts...)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: build trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp, func(ctx context.Context) error { return tp.Shutdown(ctx) }, nil
}

func buildMeterProvider(ctx context.Context, cfg options) (*sdkmetric.MeterProvider, func(context.Context) error, error) {
	endpoint, _ := resolveEndpoint(cfg, metricsEndpoint(cfg.protocol))

	var exporter sdkmetric.Exporter
	var err error
	switch cfg.protocol {
	case "http":
		httpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
		if len(cfg.headers) > 0 {
			httpOpts = append(httpOpts, otlpmetrichttp.WithHeaders(cfg.headers))
		}
		if cfg.insecure {
			httpOpts = append(httpOpts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, httpOpts...)
	default:
		grpcOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(endpoint)}
		if len(cfg.headers) > 0 {
			grpcOpts = append(grpcOpts, otlpmetricgrpc.WithHeaders(cfg.headers))
		}
		if cfg.insecure {
			grpcOpts = append(grpcOpts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err = otlpmetricgrpc.New(ctx, grpcOpts...)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: build metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))))
	otel.SetMeterProvider(mp)
	return mp, func(ctx context.Context) error { return mp.Shutdown(ctx) }, nil
}

// resolveEndpoint picks cfg.endpointURL over cfg.endpoint over the
// protocol's default, mirroring OTEL_EXPORTER_OTLP_*_ENDPOINT precedence.
func resolveEndpoint(cfg options, fallback string) (endpoint, path string) {
	if cfg.endpointURL != "" {
		if ep, p, err := parseEndpointURL(cfg.endpointURL); err == nil {
			return ep, p
		}
	}
	if cfg.endpoint != "" {
		return cfg.endpoint, ""
	}
	return fallback, ""
}

func parseEndpointURL(raw string) (endpoint, path string, err error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("telemetry: endpoint URL %q has no host", raw)
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	return u.Host, p, nil
}

// tracesEndpoint resolves the default OTLP traces endpoint from the
// standard environment variables, falling back to protocol defaults.
func tracesEndpoint(protocol string) string {
	if ep := os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); ep != "" {
		return ep
	}
	if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
		return ep
	}
	return defaultEndpoint(protocol)
}

// metricsEndpoint resolves the default OTLP metrics endpoint, same
// precedence as tracesEndpoint.
func metricsEndpoint(protocol string) string {
	if ep := os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); ep != "" {
		return ep
	}
	if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
		return ep
	}
	return defaultEndpoint(protocol)
}

func defaultEndpoint(protocol string) string {
	if protocol == "http" {
		return "localhost:4318"
	}
	return "localhost:4317"
}
