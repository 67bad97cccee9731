//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

// Package toolcall implements the tool-call protocol (C3): the closed tool
// catalog, prompt templating, permissive parsing of LM text into typed
// ToolCalls, the forced-progress guard, and dispatch.
package toolcall

import (
	"fmt"
	"strings"

	"deepresearch/core/tool"
)

// Tool catalog tags. Closed set: no other tag is recognized by the parser
// or the dispatcher.
const (
	ToolWebSearch        = "web_search"
	ToolScholarSearch     = "scholar_search"
	ToolNewsSearch       = "news_search"
	ToolDocSearch        = "doc_search"
	ToolThink            = "think"
	ToolConductResearch  = "conduct_research"
	ToolResearchComplete = "research_complete"
)

// Catalog is the fixed, closed tool catalog described in §3/§4.3.
var Catalog = []tool.Declaration{
	{
		Name:            ToolWebSearch,
		Description:     "Search the general web for a query.",
		RequiredArgs:    []string{"query"},
		ConventionalArg: "query",
	},
	{
		Name:            ToolScholarSearch,
		Description:     "Search academic/scholarly sources for a query.",
		RequiredArgs:    []string{"query"},
		ConventionalArg: "query",
	},
	{
		Name:            ToolNewsSearch,
		Description:     "Search recent news coverage for a query.",
		RequiredArgs:    []string{"query"},
		ConventionalArg: "query",
	},
	{
		Name:            ToolDocSearch,
		Description:     "Search technical documentation for a query, optionally scoped to a library.",
		RequiredArgs:    []string{"query"},
		ConventionalArg: "query",
	},
	{
		Name:            ToolThink,
		Description:     "Record a private reasoning note with no external side effect.",
		RequiredArgs:    []string{"thoughts"},
		ConventionalArg: "thoughts",
	},
	{
		Name:            ToolConductResearch,
		Description:     "Delegate a sub-topic to a focused research sub-agent and return its summary.",
		RequiredArgs:    []string{"research_topic"},
		ConventionalArg: "research_topic",
	},
	{
		Name:            ToolResearchComplete,
		Description:     "Signal that the supervisor has gathered enough to write the final report.",
		RequiredArgs:    []string{"summary"},
		ConventionalArg: "summary",
	},
}

// catalogIndex and conventionalArgIndex speed up parser lookups.
var (
	catalogIndex         map[string]tool.Declaration
	conventionalArgIndex map[string]string
)

func init() {
	catalogIndex = make(map[string]tool.Declaration, len(Catalog))
	conventionalArgIndex = make(map[string]string, len(Catalog))
	for _, decl := range Catalog {
		catalogIndex[decl.Name] = decl
		conventionalArgIndex[decl.Name] = decl.ConventionalArg
	}
}

// IsCatalogTool reports whether name is one of the closed tool catalog tags.
func IsCatalogTool(name string) bool {
	_, ok := catalogIndex[name]
	return ok
}

// RequiredArgs returns the required argument keys for a catalog tool, or
// nil if name is not in the catalog.
func RequiredArgs(name string) []string {
	return catalogIndex[name].RequiredArgs
}

// ConventionalArg returns the parameter name a bare quoted-string argument
// binds to for this tool (e.g. "query" for *_search tools).
func ConventionalArg(name string) string {
	return conventionalArgIndex[name]
}

// PromptBlock renders the deterministic tool description block appended to
// every orchestrator call to the LM: the catalog, each tool's signature,
// and the required invocation syntax.
func PromptBlock() string {
	var b strings.Builder
	b.WriteString("Available tools:\n")
	for _, decl := range Catalog {
		b.WriteString(fmt.Sprintf("- %s(%s): %s\n", decl.Name, decl.ConventionalArg, decl.Description))
	}
	b.WriteString("\nTo invoke a tool, write a line of the form:\n")
	b.WriteString("USE_TOOL: tool_name(argument)\n")
	b.WriteString("The argument may be a quoted string or a JSON object matching the tool's parameters.\n")
	return b.String()
}
