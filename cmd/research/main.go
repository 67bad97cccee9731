//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

// Command research runs one deep-research invocation from the command
// line, wiring real search adapters and an LM provider selected by flag.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	coremodel "deepresearch/core/model"
	"deepresearch/internal/telemetry"
	"deepresearch/log"
	"deepresearch/model/gemini"
	"deepresearch/model/openai"
	"deepresearch/research"
	"deepresearch/search"
)

func main() {
	var (
		provider      = flag.String("provider", "openai", "LM provider: openai or gemini")
		model         = flag.String("model", "gpt-4o-mini", "LM model name")
		maxIterations = flag.Int("max-iterations", 3, "supervisor loop iteration cap")
		timeoutMs     = flag.Int("timeout-ms", 180000, "overall invocation timeout in milliseconds")
		otlpEndpoint  = flag.String("otlp-endpoint", "", "OTLP endpoint; empty disables telemetry")
		logLevel      = flag.String("log-level", "info", "log level: trace, debug, info, warn, error")
	)
	flag.Parse()
	if *logLevel == "trace" {
		log.SetLevel(log.LevelDebug)
		log.SetTraceEnabled(true)
	} else {
		log.SetLevel(*logLevel)
	}

	query := flag.Arg(0)
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: research [flags] <query>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds := research.CredentialsFromEnv()

	lm, err := buildModel(ctx, *provider, creds)
	if err != nil {
		log.Fatalf("research: %v", err)
	}

	var tel *telemetry.Provider
	if *otlpEndpoint != "" {
		tel, err = telemetry.NewProvider(ctx, telemetry.WithServiceName("deepresearch-cli"), telemetry.WithEndpoint(*otlpEndpoint))
		if err != nil {
			log.Warnf("research: telemetry disabled: %v", err)
			tel = nil
		} else {
			defer tel.Shutdown(ctx)
		}
	}

	aggregator, err := buildAggregator(creds, tel)
	if err != nil {
		log.Fatalf("research: %v", err)
	}

	cfg := research.DefaultConfig(
		research.WithProvider(*provider),
		research.WithModel(*model),
		research.WithMaxIterations(*maxIterations),
		research.WithTimeout(*timeoutMs),
	)

	orchestrator, err := research.NewOrchestrator(lm, aggregator, cfg)
	if err != nil {
		log.Fatalf("research: invalid configuration: %v", err)
	}
	if tel != nil {
		orchestrator.Telemetry = tel
	}

	result := orchestrator.ConductDeepResearch(ctx, query)
	if !result.Success {
		fmt.Fprintf(os.Stderr, "research failed: %s\n%s\n", result.Error, result.Details)
		os.Exit(1)
	}

	fmt.Println(result.FinalReport)
}

func buildModel(ctx context.Context, provider string, creds research.ProviderCredentials) (coremodel.Model, error) {
	switch provider {
	case "gemini":
		return gemini.New(ctx, gemini.WithAPIKey(creds.GeminiAPIKey))
	case "openai":
		return openai.New(openai.WithAPIKey(creds.OpenAIAPIKey)), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func buildAggregator(creds research.ProviderCredentials, tel *telemetry.Provider) (*search.Aggregator, error) {
	adapters := []search.Adapter{
		search.NewDuckDuckGoAdapter(),
		search.NewContext7Adapter(),
	}
	if creds.GoogleCSEAPIKey != "" && creds.GoogleCSECX != "" {
		adapters = append(adapters, search.NewGoogleAdapter(creds.GoogleCSEAPIKey, creds.GoogleCSECX))
	}
	if creds.TavilyAPIKey != "" {
		adapters = append(adapters, search.NewTavilyAdapter(creds.TavilyAPIKey))
	}
	if creds.LangSearchAPIKey != "" {
		adapters = append(adapters, search.NewLangSearchAdapter(creds.LangSearchAPIKey))
	}
	opts := []search.Option{}
	if tel != nil {
		opts = append(opts, search.WithTelemetry(tel))
	}
	return search.NewAggregator(adapters, 4, opts...)
}
