//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

// Package tool defines the shared tool-declaration shapes used by the
// toolcall catalog and, indirectly, by the search package's adapter
// metadata. It deliberately carries no behavior: dispatch lives in toolcall,
// schemas live here so both toolcall and any future function-calling
// adapter can describe the same catalog without importing each other.
package tool

// Declaration describes one entry in the closed tool catalog: its name, a
// human-readable description for prompt templating, and which arguments are
// required. Argument binding itself is the parser's job (see toolcall);
// Declaration only states the contract a parsed call must satisfy.
type Declaration struct {
	Name        string
	Description string
	// RequiredArgs lists argument keys that must be present and non-empty
	// after binding for a call to be dispatched rather than rejected.
	RequiredArgs []string
	// ConventionalArg names the argument key a single bare-string argument
	// binds to, e.g. "query" for *_search tools. Used by the parser when it
	// binds a single quoted-string argument.
	ConventionalArg string
}

// Schema is a minimal JSON-Schema-subset description of a tool's argument
// object, used only for documentation in the prompt template. The protocol
// is textual (USE_TOOL: name(args)), not native function calling, so this
// is descriptive rather than enforced by a validator.
type Schema struct {
	Type       string
	Properties map[string]Property
	Required   []string
}

// Property describes one argument's type and purpose for prompt templating.
type Property struct {
	Type        string
	Description string
}
