//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

package toolcall

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	coremodel "deepresearch/core/model"
	"deepresearch/search"
)

var (
	useToolPattern = regexp.MustCompile(`(?i)^\s*USE_TOOL:\s*([a-z_]+)\((.*)\)\s*$`)
	barePattern    = regexp.MustCompile(`^\s*([a-z_]+)\((.*)\)\s*$`)
	labelPattern   = regexp.MustCompile(`^\s*([a-z_]+):\s*(.+)$`)
)

// Parse scans assistant text for tool invocations using the three
// complementary patterns described in §4.3, in order, line by line. Each
// match is assigned a fresh id. If no calls are parsed, the forced-progress
// guard may synthesize exactly one web_search call.
func Parse(text string) []coremodel.ToolCall {
	var calls []coremodel.ToolCall

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := useToolPattern.FindStringSubmatch(line); m != nil {
			if call, ok := buildCall(m[1], m[2]); ok {
				calls = append(calls, call)
			}
			continue
		}
		if m := barePattern.FindStringSubmatch(line); m != nil && IsCatalogTool(m[1]) {
			if call, ok := buildCall(m[1], m[2]); ok {
				calls = append(calls, call)
			}
			continue
		}
		if m := labelPattern.FindStringSubmatch(line); m != nil && IsCatalogTool(m[1]) {
			if call, ok := buildCall(m[1], m[2]); ok {
				calls = append(calls, call)
			}
			continue
		}
	}

	if len(calls) == 0 {
		if guard, ok := ForcedProgressGuard(text); ok {
			return []coremodel.ToolCall{guard}
		}
	}
	return calls
}

func buildCall(name, rawArgs string) (coremodel.ToolCall, bool) {
	if !IsCatalogTool(name) {
		return coremodel.ToolCall{}, false
	}
	args := bindArguments(name, rawArgs)
	if !hasRequiredArgs(name, args) {
		return coremodel.ToolCall{}, false
	}
	return coremodel.ToolCall{
		ID:        uuid.NewString(),
		Name:      name,
		Arguments: args,
	}, true
}

// hasRequiredArgs implements §4.3's rejection rule: calls missing a
// required argument (absent, or present but an empty string) are dropped
// rather than dispatched.
func hasRequiredArgs(name string, args map[string]any) bool {
	for _, key := range RequiredArgs(name) {
		v, ok := args[key]
		if !ok {
			return false
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

// bindArguments implements the three-step binding policy from §4.3: (i) a
// single quoted string binds to the tool's conventional parameter; (ii)
// otherwise attempt JSON-object parsing; (iii) on parse failure, treat the
// whole argument text as a bare query string.
func bindArguments(toolName, rawArgs string) map[string]any {
	args := strings.TrimSpace(rawArgs)
	if args == "" {
		return map[string]any{}
	}

	if s, ok := asQuotedString(args); ok {
		return singleArgMap(toolName, s)
	}

	if strings.HasPrefix(args, "{") && gjson.Valid(args) {
		parsed := gjson.Parse(args)
		if parsed.IsObject() {
			m := make(map[string]any)
			parsed.ForEach(func(key, value gjson.Result) bool {
				m[key.String()] = value.Value()
				return true
			})
			return m
		}
	}

	return singleArgMap(toolName, stripQuotes(args))
}

// singleArgMap patches a bare argument value into a one-key JSON blob
// keyed by the tool's conventional parameter, then decodes it back through
// gjson — so a bare string argument is bound the same way a genuine JSON
// object argument would be, rather than constructing the map literal by
// hand.
func singleArgMap(toolName, value string) map[string]any {
	key := ConventionalArg(toolName)
	patched, err := sjson.Set("{}", key, value)
	if err != nil {
		return map[string]any{key: value}
	}
	m := make(map[string]any, 1)
	gjson.Parse(patched).ForEach(func(k, v gjson.Result) bool {
		m[k.String()] = v.Value()
		return true
	})
	return m
}

func asQuotedString(s string) (string, bool) {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1], true
		}
	}
	return "", false
}

func stripQuotes(s string) string {
	if v, ok := asQuotedString(s); ok {
		return v
	}
	return s
}

// ForcedProgressGuard implements §4.3's forced-progress mechanism: if the
// text mentions "research" or "search" but no tool call was parseable,
// synthesize one web_search call from the first mentioning line, using up
// to three significant (non-stopword) tokens as the query.
func ForcedProgressGuard(text string) (coremodel.ToolCall, bool) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "research") && !strings.Contains(lower, "search") {
		return coremodel.ToolCall{}, false
	}

	for _, line := range strings.Split(text, "\n") {
		l := strings.ToLower(line)
		if !strings.Contains(l, "research") && !strings.Contains(l, "search") {
			continue
		}
		tokens := search.SignificantTokens(line, 3)
		if len(tokens) == 0 {
			continue
		}
		return coremodel.ToolCall{
			ID:        uuid.NewString(),
			Name:      ToolWebSearch,
			Arguments: map[string]any{"query": strings.Join(tokens, " ")},
		}, true
	}
	return coremodel.ToolCall{}, false
}
