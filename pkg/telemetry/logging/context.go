package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// SessionKey is the context key for edit session identifiers.
	SessionKey contextKey = "session"

	// DocumentKey is the context key for the document being processed.
	DocumentKey contextKey = "document"

	// SolutionKey is the context key for solution hashes.
	SolutionKey contextKey = "solution"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"
)

// WithSessionID adds an edit session ID to the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionKey, id)
}

// SessionID retrieves the session ID from the context.
func SessionID(ctx context.Context) string {
	return stringValue(ctx, SessionKey)
}

// WithDocument adds a document path to the context.
func WithDocument(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, DocumentKey, path)
}

// Document retrieves the document path from the context.
func Document(ctx context.Context) string {
	return stringValue(ctx, DocumentKey)
}

// WithSolution adds a solution hash to the context.
func WithSolution(ctx context.Context, hash string) context.Context {
	return context.WithValue(ctx, SolutionKey, hash)
}

// Solution retrieves the solution hash from the context.
func Solution(ctx context.Context) string {
	return stringValue(ctx, SolutionKey)
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// TraceID retrieves the trace ID from the context.
func TraceID(ctx context.Context) string {
	return stringValue(ctx, TraceIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// Fields returns the context fields as key-value pairs for slog.
func Fields(ctx context.Context) []any {
	var fields []any
	for _, key := range []contextKey{SessionKey, DocumentKey, SolutionKey, TraceIDKey} {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, string(key), v)
		}
	}
	return fields
}

// FromContext returns logger extended with the context fields.
// A nil logger uses the default logger.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	fields := Fields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
