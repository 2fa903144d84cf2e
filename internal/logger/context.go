package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds adapter-scoped logging context: the fields every log
// line emitted while handling a given client-adapter's events should carry.
type LogContext struct {
	TraceID     string    // OpenTelemetry trace ID
	SpanID      string    // OpenTelemetry span ID
	AdapterName string    // Client-supplied name, or "Unknown-FD-<n>" before identification
	AdapterFD   int       // Adapter's file descriptor
	ClientID    string    // Resolved client identity, once known
	StartTime   time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for an adapter identified by fd.
func NewLogContext(fd int) *LogContext {
	return &LogContext{
		AdapterFD: fd,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:     lc.TraceID,
		SpanID:      lc.SpanID,
		AdapterName: lc.AdapterName,
		AdapterFD:   lc.AdapterFD,
		ClientID:    lc.ClientID,
		StartTime:   lc.StartTime,
	}
}

// WithName returns a copy with the adapter name set
func (lc *LogContext) WithName(name string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.AdapterName = name
	}
	return clone
}

// WithClientID returns a copy with the resolved client identity set
func (lc *LogContext) WithClientID(id string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ClientID = id
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
