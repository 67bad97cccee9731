//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

// Package log provides logging utilities used throughout deepresearch.
package log

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log level constants.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelFatal = "fatal"
)

var (
	zapLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	traceEnabled = false
)

// invocationIDKey is the context key under which WithInvocationID stores a
// research invocation's correlation id for the *Context logging helpers.
type invocationIDKey struct{}

// WithInvocationID returns a copy of ctx carrying id so that every
// subsequent *Context log call made with it is tagged with the invocation
// it belongs to. A zero-value id is a no-op, returning ctx unchanged.
func WithInvocationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, invocationIDKey{}, id)
}

// InvocationIDFromContext reports the invocation id attached by
// WithInvocationID, if any.
func InvocationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(invocationIDKey{}).(string)
	return id, ok
}

// tagFormat prefixes format with the context's invocation id, if any, so
// the *Context helpers carry real per-invocation correlation rather than
// discarding ctx.
func tagFormat(ctx context.Context, format string) string {
	if id, ok := InvocationIDFromContext(ctx); ok {
		return "[inv=" + id + "] " + format
	}
	return format
}

// tagArgs prefixes an Print-style argument list with the context's
// invocation id, if any.
func tagArgs(ctx context.Context, args []any) []any {
	id, ok := InvocationIDFromContext(ctx)
	if !ok {
		return args
	}
	tagged := make([]any, 0, len(args)+1)
	tagged = append(tagged, "[inv="+id+"]")
	tagged = append(tagged, args...)
	return tagged
}

// Default borrows logging utilities from zap.
// You may replace it with whatever logger you like as long as it implements the Logger interface.
var Default Logger = zap.New(
	zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapLevel,
	),
	zap.AddCaller(),
	zap.AddCallerSkip(1),
).Sugar()

// ContextDefault is the default logger used by *Context helpers.
// It uses a separate zap logger so that caller information for helpers
// like DebugContext can be tuned independently of Default.
var ContextDefault Logger = zap.New(
	zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapLevel,
	),
	zap.AddCaller(),
	zap.AddCallerSkip(1),
).Sugar()

// SetLevel sets the log level to the specified level.
// Valid levels are: "debug", "info", "warn", "error", "fatal".
func SetLevel(level string) {
	switch level {
	case LevelDebug:
		zapLevel.SetLevel(zapcore.DebugLevel)
	case LevelInfo:
		zapLevel.SetLevel(zapcore.InfoLevel)
	case LevelWarn:
		zapLevel.SetLevel(zapcore.WarnLevel)
	case LevelError:
		zapLevel.SetLevel(zapcore.ErrorLevel)
	case LevelFatal:
		zapLevel.SetLevel(zapcore.FatalLevel)
	default:
		zapLevel.SetLevel(zapcore.InfoLevel)
	}
}

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "name",
	CallerKey:      "caller",
	MessageKey:     "message",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalColorLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// Logger defines the logging interface used throughout deepresearch.
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
}

// Debug logs to DEBUG log. Arguments are handled in the manner of fmt.Print.
func Debug(args ...any) {
	Default.Debug(args...)
}

// DebugContext logs to DEBUG log with context. If ctx carries an
// invocation id (see WithInvocationID), the log line is tagged with it.
var DebugContext = func(
	ctx context.Context, args ...any,
) {
	ContextDefault.Debug(tagArgs(ctx, args)...)
}

// Debugf logs to DEBUG log. Arguments are handled in the manner of fmt.Printf.
func Debugf(format string, args ...any) {
	Default.Debugf(format, args...)
}

// DebugfContext logs to DEBUG log with context and formatting. If ctx
// carries an invocation id (see WithInvocationID), the format is tagged
// with it.
var DebugfContext = func(
	ctx context.Context, format string, args ...any,
) {
	ContextDefault.Debugf(tagFormat(ctx, format), args...)
}

// Info logs to INFO log. Arguments are handled in the manner of fmt.Print.
func Info(args ...any) {
	Default.Info(args...)
}

// InfoContext logs to INFO log with context. If ctx carries an invocation
// id (see WithInvocationID), the log line is tagged with it.
var InfoContext = func(
	ctx context.Context, args ...any,
) {
	ContextDefault.Info(tagArgs(ctx, args)...)
}

// Infof logs to INFO log. Arguments are handled in the manner of fmt.Printf.
func Infof(format string, args ...any) {
	Default.Infof(format, args...)
}

// InfofContext logs to INFO log with context and formatting. If ctx
// carries an invocation id (see WithInvocationID), the format is tagged
// with it.
var InfofContext = func(
	ctx context.Context, format string, args ...any,
) {
	ContextDefault.Infof(tagFormat(ctx, format), args...)
}

// Warn logs to WARNING log. Arguments are handled in the manner of fmt.Print.
func Warn(args ...any) {
	Default.Warn(args...)
}

// WarnContext logs to WARNING log with context. If ctx carries an
// invocation id (see WithInvocationID), the log line is tagged with it.
var WarnContext = func(
	ctx context.Context, args ...any,
) {
	ContextDefault.Warn(tagArgs(ctx, args)...)
}

// Warnf logs to WARNING log. Arguments are handled in the manner of fmt.Printf.
func Warnf(format string, args ...any) {
	Default.Warnf(format, args...)
}

// WarnfContext logs to WARNING log with context and formatting. If ctx
// carries an invocation id (see WithInvocationID), the format is tagged
// with it.
var WarnfContext = func(
	ctx context.Context, format string, args ...any,
) {
	ContextDefault.Warnf(tagFormat(ctx, format), args...)
}

// Error logs to ERROR log. Arguments are handled in the manner of fmt.Print.
func Error(args ...any) {
	Default.Error(args...)
}

// ErrorContext logs to ERROR log with context. If ctx carries an
// invocation id (see WithInvocationID), the log line is tagged with it.
var ErrorContext = func(
	ctx context.Context, args ...any,
) {
	ContextDefault.Error(tagArgs(ctx, args)...)
}

// Errorf logs to ERROR log. Arguments are handled in the manner of fmt.Printf.
func Errorf(format string, args ...any) {
	Default.Errorf(format, args...)
}

// ErrorfContext logs to ERROR log with context and formatting. If ctx
// carries an invocation id (see WithInvocationID), the format is tagged
// with it.
var ErrorfContext = func(
	ctx context.Context, format string, args ...any,
) {
	ContextDefault.Errorf(tagFormat(ctx, format), args...)
}

// Fatal logs to FATAL log. Arguments are handled in the manner of fmt.Print.
func Fatal(args ...any) {
	Default.Fatal(args...)
}

// FatalContext logs to FATAL log with context. If ctx carries an
// invocation id (see WithInvocationID), the log line is tagged with it.
var FatalContext = func(
	ctx context.Context, args ...any,
) {
	ContextDefault.Fatal(tagArgs(ctx, args)...)
}

// Fatalf logs to FATAL log. Arguments are handled in the manner of fmt.Printf.
func Fatalf(format string, args ...any) {
	Default.Fatalf(format, args...)
}

// FatalfContext logs to FATAL log with context and formatting. If ctx
// carries an invocation id (see WithInvocationID), the format is tagged
// with it.
var FatalfContext = func(
	ctx context.Context, format string, args ...any,
) {
	ContextDefault.Fatalf(tagFormat(ctx, format), args...)
}

// Tracef logs a message at the trace level with formatting. No-op unless trace is enabled.
func Tracef(format string, args ...any) {
	if !traceEnabled {
		return
	}
	Default.Debugf("[TRACE] "+format, args...)
}

// TracefContext logs a message at the trace level with formatting and
// context. No-op unless trace is enabled. If ctx carries an invocation id
// (see WithInvocationID), the format is tagged with it.
var TracefContext = func(
	ctx context.Context, format string, args ...any,
) {
	if !traceEnabled {
		return
	}
	ContextDefault.Debugf(tagFormat(ctx, "[TRACE] "+format), args...)
}

// SetTraceEnabled sets the trace enabled flag.
func SetTraceEnabled(enabled bool) {
	traceEnabled = enabled
}
