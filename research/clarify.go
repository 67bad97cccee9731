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

	"github.com/tidwall/gjson"

	coremodel "deepresearch/core/model"
	"deepresearch/log"
)

const clarifyPromptTemplate = `You are the clarification gate of a research assistant.
Given the user's request below, decide whether it is specific enough to research directly.

User request: %s

Respond with a single JSON object of the form:
{"need_clarification": true|false, "question": "...", "verification": "..."}
Only ask for clarification when the request is genuinely ambiguous or under-specified.`

// runClarifyPhase implements Phase 1 (§4.4). Any LM failure or JSON parse
// failure degrades to "no clarification needed" rather than blocking the
// invocation, per §7's LMCallFailed policy for this phase.
func runClarifyPhase(ctx context.Context, lm coremodel.Model, cfg DeepResearchConfig, state *ResearchState) (needClarification bool, question string) {
	prompt := fmt.Sprintf(clarifyPromptTemplate, state.UserMessage)

	resp, err := lm.Generate(ctx, prompt, cfg.Provider, cfg.Model)
	if err != nil {
		log.Warnf("research: phase1 clarify LM call failed, proceeding without clarification: %v", err)
		return false, ""
	}
	state.addUsage(resp.Usage)

	parsed := gjson.Parse(resp.Content)
	if !parsed.IsObject() {
		return false, ""
	}
	if !parsed.Get("need_clarification").Bool() {
		return false, ""
	}
	return true, parsed.Get("question").String()
}
