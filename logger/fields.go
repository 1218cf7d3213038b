package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for structured logging across footprint.
// Use these constants instead of raw strings so log queries stay stable.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldSourceID  = "source_id"
	FieldInputType = "input_type"

	// Requests
	FieldURL       = "url"
	FieldOrigin    = "origin"
	FieldTransport = "transport"
	FieldStatus    = "status"
	FieldSkipped   = "skipped"

	// Timing
	FieldDurationMS = "duration_ms"
	FieldSleepMS    = "sleep_ms"

	// Errors
	FieldError = "error"
	FieldStage = "stage"

	// Counts and sizes
	FieldCount    = "count"
	FieldSize     = "size"
	FieldFindings = "findings"
	FieldWarnings = "warnings"
	FieldWorkers  = "workers"

	// Files and processes
	FieldPath     = "path"
	FieldCommand  = "command"
	FieldExitCode = "exit_code"

	// Glyph from package sym
	FieldSymbol = "symbol"
)

type contextKey string

const (
	runIDKey    contextKey = "logger_run_id"
	sourceIDKey contextKey = "logger_source_id"
)

// WithRunID adds a run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithSourceID adds a source ID to the context for logging
func WithSourceID(ctx context.Context, sourceID string) context.Context {
	return context.WithValue(ctx, sourceIDKey, sourceID)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Warnw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if sourceID, ok := ctx.Value(sourceIDKey).(string); ok && sourceID != "" {
		fields = append(fields, FieldSourceID, sourceID)
	}

	return fields
}

// LoggerFromContext returns a logger carrying run_id and source_id from ctx.
func LoggerFromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if base == nil {
		base = Logger
	}
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Fetcher struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func New() *Fetcher {
//	    return &Fetcher{logger: logger.ComponentLogger("fetch")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
