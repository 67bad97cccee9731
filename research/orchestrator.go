//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	coremodel "deepresearch/core/model"
	"deepresearch/internal/telemetry"
	"deepresearch/log"
	"deepresearch/search"
)

const minQueryLength = 3

// Orchestrator is the public entry point described in §6:
// conductDeepResearch(query) -> DeepResearchResult. It holds the injected
// LM and search aggregator, both constructed once by the caller from
// process configuration (see ProviderCredentials/CredentialsFromEnv).
type Orchestrator struct {
	LM         coremodel.Model
	Aggregator *search.Aggregator
	Config     DeepResearchConfig

	// Telemetry is best-effort instrumentation; a nil value is equivalent
	// to telemetry.NewNoop() and never affects correctness.
	Telemetry *telemetry.Provider
}

// NewOrchestrator builds an Orchestrator. cfg is validated eagerly so that
// a misconfigured orchestrator fails at construction rather than silently
// misbehaving mid-invocation.
func NewOrchestrator(lm coremodel.Model, aggregator *search.Aggregator, cfg DeepResearchConfig) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{LM: lm, Aggregator: aggregator, Config: cfg, Telemetry: telemetry.NewNoop()}, nil
}

func (o *Orchestrator) telemetry() *telemetry.Provider {
	if o.Telemetry == nil {
		return telemetry.NewNoop()
	}
	return o.Telemetry
}

// ConductDeepResearch runs the four-phase pipeline (§4.4) and returns a
// terminal DeepResearchResult. It never returns a Go error; all failure
// modes are surfaced via DeepResearchResult.Success == false.
func (o *Orchestrator) ConductDeepResearch(ctx context.Context, query string) DeepResearchResult {
	invocationID := uuid.NewString()

	trimmed := strings.TrimSpace(query)
	if len(trimmed) < minQueryLength {
		return failureResult(invocationID, "Query must be ≥3 chars", "")
	}

	ctx = log.WithInvocationID(ctx, invocationID)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(o.Config.TimeoutMs)*time.Millisecond)
	defer cancel()

	resultCh := make(chan DeepResearchResult, 1)
	go func() {
		resultCh <- o.run(ctx, invocationID, trimmed)
	}()

	select {
	case result := <-resultCh:
		return result
	case <-ctx.Done():
		log.WarnfContext(ctx, "research: exceeded timeout_ms=%d", o.Config.TimeoutMs)
		return failureResult(invocationID, fmt.Sprintf("research timed out after %dms", o.Config.TimeoutMs), "")
	}
}

// run executes the four phases in strict sequence, recovering from any
// uncaught panic as the §7 "Uncaught" error kind.
func (o *Orchestrator) run(ctx context.Context, invocationID, query string) (result DeepResearchResult) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorfContext(ctx, "research: panicked: %v", r)
			result = failureResult(invocationID, fmt.Sprintf("%v", r), "")
		}
	}()

	state := newResearchState(query, invocationID)
	tel := o.telemetry()

	clarifyCtx, clarifySpan := tel.StartSpan(ctx, telemetry.SpanClarifyPhase)
	needsClarification, question := runClarifyPhase(clarifyCtx, o.LM, o.Config, state)
	clarifySpan.End()
	if needsClarification {
		return DeepResearchResult{
			Success:      false,
			Error:        "Clarification needed",
			Details:      question,
			TokenUsage:   state.Usage,
			InvocationID: invocationID,
		}
	}

	briefCtx, briefSpan := tel.StartSpan(ctx, telemetry.SpanBriefPhase)
	brief := runBriefPhase(briefCtx, o.LM, o.Config, state)
	briefSpan.End()
	state.Brief = brief.Brief

	researchCtx, researchSpan := tel.StartSpan(ctx, telemetry.SpanResearchPhase)
	runResearchPhase(researchCtx, o.LM, o.Config, o.Aggregator, state, brief, tel)
	researchSpan.End()

	reportCtx, reportSpan := tel.StartSpan(ctx, telemetry.SpanReportPhase)
	finalReport := runReportPhase(reportCtx, o.LM, o.Config, state)
	reportSpan.End()

	return DeepResearchResult{
		Success:       true,
		ResearchBrief: state.Brief,
		FinalReport:   finalReport,
		Notes:         state.Notes,
		RawNotes:      state.RawNotes,
		TokenUsage:    state.Usage,
		InvocationID:  invocationID,
	}
}
