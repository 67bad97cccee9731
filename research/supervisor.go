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

	"go.opentelemetry.io/otel/attribute"

	coremodel "deepresearch/core/model"
	"deepresearch/internal/telemetry"
	"deepresearch/log"
	"deepresearch/search"
	"deepresearch/toolcall"
)

const supervisorSystemPromptTemplate = `You are the supervisor of a deep research assistant.

Research brief: %s

Key questions:
%s

You may delegate sub-topics to a research sub-agent via conduct_research, and
may use search tools directly. You have at most %d iterations and an advisory
hint of %d concurrent sub-agents. When you have gathered enough to write a
final report, call research_complete.

%s`

// supervisorLoop implements Phase 3's supervisor loop (§4.4) and also acts
// as the toolcall.ResearchDelegate for conduct_research calls, recursing
// into the sub-agent loop (runSubAgentLoop) without toolcall importing research.
type supervisorLoop struct {
	lm         coremodel.Model
	cfg        DeepResearchConfig
	aggregator *search.Aggregator
	state      *ResearchState
	tel        *telemetry.Provider
}

// ConductResearch implements toolcall.ResearchDelegate.
func (s *supervisorLoop) ConductResearch(ctx context.Context, topic string) (string, error) {
	return runSubAgentLoop(ctx, s.lm, s.cfg, s.aggregator, topic, s.tel)
}

// runResearchPhase implements Phase 3 (§4.4): the supervisor loop, its
// termination conditions, and the forced-research fallback.
func runResearchPhase(ctx context.Context, lm coremodel.Model, cfg DeepResearchConfig, aggregator *search.Aggregator, state *ResearchState, brief briefOutcome, tel *telemetry.Provider) {
	if tel == nil {
		tel = telemetry.NewNoop()
	}
	sup := &supervisorLoop{lm: lm, cfg: cfg, aggregator: aggregator, state: state, tel: tel}
	dispatcher := toolcall.NewDispatcher(aggregator, sup)
	dispatcher.Telemetry = tel

	systemPrompt := fmt.Sprintf(supervisorSystemPromptTemplate,
		brief.Brief, formatKeyQuestions(brief.KeyQuestions), cfg.MaxIterations, cfg.MaxConcurrentAgents, toolcall.PromptBlock())
	state.SupervisorConversation = append(state.SupervisorConversation, coremodel.NewSystemMessage(systemPrompt))

	for iteration := 0; iteration < cfg.MaxIterations; iteration++ {
		state.ResearchIterations = iteration + 1

		iterCtx, span := tel.StartSpan(ctx, telemetry.SpanSupervisorIter, attribute.Int("iteration", iteration))

		text := callSupervisorLM(iterCtx, lm, cfg, state, iteration)
		calls := toolcall.Parse(text)
		state.SupervisorConversation = append(state.SupervisorConversation, coremodel.NewAssistantMessage(text, calls))

		if len(calls) == 0 && iteration == 0 && len(state.Notes) == 0 {
			tel.RecordForcedProgress(iterCtx)
			span.End()
			runForcedResearchFallback(ctx, sup, state)
			return
		}

		complete := dispatchSupervisorCalls(iterCtx, dispatcher, state, calls)
		span.End()
		if complete {
			return
		}
	}
}

func callSupervisorLM(ctx context.Context, lm coremodel.Model, cfg DeepResearchConfig, state *ResearchState, iteration int) string {
	resp, err := lm.Generate(ctx, renderConversation(state.SupervisorConversation), cfg.Provider, cfg.Model)
	if err != nil {
		log.Warnf("research: phase3 supervisor LM call failed on iteration %d: %v", iteration+1, err)
		return ""
	}
	state.addUsage(resp.Usage)
	return resp.Content
}

// dispatchSupervisorCalls executes parsed calls in order, appending notes
// for conduct_research results, and reports whether research_complete
// fired.
func dispatchSupervisorCalls(ctx context.Context, dispatcher *toolcall.Dispatcher, state *ResearchState, calls []coremodel.ToolCall) (complete bool) {
	for _, call := range calls {
		msg := dispatcher.Dispatch(ctx, call)
		state.SupervisorConversation = append(state.SupervisorConversation, msg)

		switch call.Name {
		case toolcall.ToolConductResearch:
			topic := callArg(call, "research_topic")
			state.Notes = append(state.Notes, msg.Content)
			state.RawNotes = append(state.RawNotes, fmt.Sprintf("Research on: %s", topic))
		case toolcall.ToolResearchComplete:
			complete = true
		}
	}
	return complete
}

// runForcedResearchFallback implements §4.4's forced-research fallback:
// synthesize 2-3 topics from the user query and run each as a sub-agent.
func runForcedResearchFallback(ctx context.Context, sup *supervisorLoop, state *ResearchState) {
	topics := synthesizeForcedTopics(state.UserMessage)
	for _, topic := range topics {
		summary, err := sup.ConductResearch(ctx, topic)
		if err != nil {
			log.Warnf("research: forced sub-agent run for topic %q failed: %v", topic, err)
			continue
		}
		state.Notes = append(state.Notes, summary)
		state.RawNotes = append(state.RawNotes, fmt.Sprintf("Forced research on: %s", topic))
	}
}

// synthesizeForcedTopics builds 2-3 topics directly from the user query per
// §4.4: significant tokens plus template phrasings, with domain-specific
// canned topics when the query mentions AI/machine learning.
func synthesizeForcedTopics(query string) []string {
	tokens := search.SignificantTokens(query, 4)
	subject := strings.Join(tokens, " ")
	if subject == "" {
		subject = query
	}

	topics := []string{
		fmt.Sprintf("Current developments in %s", subject),
		fmt.Sprintf("Practical applications and future trends in %s", subject),
	}

	lower := strings.ToLower(query)
	if strings.Contains(lower, "ai") || strings.Contains(lower, "machine learning") || strings.Contains(lower, "artificial intelligence") {
		topics = append(topics, fmt.Sprintf("Notable research papers and benchmarks for %s", subject))
	}
	return topics
}

func formatKeyQuestions(questions []string) string {
	if len(questions) == 0 {
		return "(none identified)"
	}
	var b strings.Builder
	for _, q := range questions {
		b.WriteString("- ")
		b.WriteString(q)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderConversation flattens a message list into a single prompt. The
// orchestrator's LM interface is single-shot (generate(prompt, ...)), so
// the whole running conversation is serialized each call.
func renderConversation(messages []coremodel.Message) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case coremodel.RoleTool:
			b.WriteString(fmt.Sprintf("[tool:%s] %s\n", m.Name, m.Content))
		default:
			b.WriteString(fmt.Sprintf("[%s] %s\n", m.Role, m.Content))
		}
	}
	return b.String()
}

func callArg(call coremodel.ToolCall, key string) string {
	v, ok := call.Arguments[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
