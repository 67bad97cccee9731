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

	"github.com/tidwall/gjson"

	coremodel "deepresearch/core/model"
	"deepresearch/log"
)

const briefPromptTemplate = `You are the planning stage of a research assistant.
Turn the user's request into a research brief.

User request: %s

Respond with a single JSON object of the form:
{"research_brief": "...", "key_questions": ["...", "..."], "research_scope": "..."}`

const defaultResearchScope = "general"

var questionStarters = []string{"what", "how", "why", "when", "where"}

// briefOutcome is Phase 2's artifact: the research brief plus up to five
// key questions used to seed the supervisor conversation.
type briefOutcome struct {
	Brief        string
	KeyQuestions []string
	Scope        string
}

// runBriefPhase implements Phase 2 (§4.4). On JSON failure it salvages a
// brief from the raw LM text per the documented heuristic rather than
// failing the invocation.
func runBriefPhase(ctx context.Context, lm coremodel.Model, cfg DeepResearchConfig, state *ResearchState) briefOutcome {
	prompt := fmt.Sprintf(briefPromptTemplate, state.UserMessage)

	resp, err := lm.Generate(ctx, prompt, cfg.Provider, cfg.Model)
	if err != nil {
		log.Warnf("research: phase2 brief LM call failed, salvaging from user message: %v", err)
		return salvageBrief(state.UserMessage)
	}
	state.addUsage(resp.Usage)

	parsed := gjson.Parse(resp.Content)
	if !parsed.IsObject() || !parsed.Get("research_brief").Exists() {
		return salvageBrief(resp.Content)
	}

	var questions []string
	parsed.Get("key_questions").ForEach(func(_, v gjson.Result) bool {
		if len(questions) >= 5 {
			return false
		}
		if v.String() != "" {
			questions = append(questions, v.String())
		}
		return true
	})

	scope := parsed.Get("research_scope").String()
	if scope == "" {
		scope = defaultResearchScope
	}

	return briefOutcome{
		Brief:        parsed.Get("research_brief").String(),
		KeyQuestions: questions,
		Scope:        scope,
	}
}

// salvageBrief implements §4.4's degradation path: use the raw text as the
// brief, extract question-like lines (ending in "?", beginning with a
// question word) as key questions, and assign the default scope.
func salvageBrief(rawText string) briefOutcome {
	var questions []string
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasSuffix(line, "?") {
			continue
		}
		firstWord := strings.ToLower(strings.Fields(line)[0])
		if !isQuestionStarter(firstWord) {
			continue
		}
		questions = append(questions, line)
		if len(questions) == 5 {
			break
		}
	}
	return briefOutcome{Brief: rawText, KeyQuestions: questions, Scope: defaultResearchScope}
}

func isQuestionStarter(word string) bool {
	for _, s := range questionStarters {
		if word == s {
			return true
		}
	}
	return false
}
