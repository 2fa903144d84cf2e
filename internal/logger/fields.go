package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the backend-adapter
// core: the client-adapter state machine, the wire framer, the static
// subscription registry and the config-sync driver all log through these
// keys so log aggregation and querying stays consistent.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Client-Adapter Identity
	// ========================================================================
	KeyAdapterFD   = "adapter_fd"   // Listening/accepted file descriptor for the adapter's connection
	KeyAdapterName = "adapter_name" // Client-supplied name from SUBSCR_REQ, or "Unknown-FD-<n>" before identification
	KeyPeer        = "peer"         // Peer address of the adapter's connection
	KeyClientID    = "client_id"    // Resolved clientid.ID once the adapter has identified itself
	KeyState       = "state"        // Adapter lifecycle state
	KeyRefCount    = "refcount"     // Adapter reference count

	// ========================================================================
	// Event Loop
	// ========================================================================
	KeyEvent   = "event"    // Cooperative event kind: CONN_INIT, CONN_READ, PROC_MSG, CONN_WRITE, WRITES_ON
	KeyRetry   = "retry"    // Retry/reschedule delay applied to an event
	KeyTxnID   = "txn_id"   // Backend transaction identifier
	KeyMsgKind = "msg_kind" // Wire message kind tag

	// ========================================================================
	// Framing & I/O
	// ========================================================================
	KeyBytes       = "bytes"        // Byte count read, written, or queued
	KeyFrameLen    = "frame_len"    // Decoded frame payload length
	KeyQueuedBytes = "queued_bytes" // Bytes currently queued on the write side

	// ========================================================================
	// Subscription / Config-Sync
	// ========================================================================
	KeyXPath     = "xpath"      // XPath pattern being matched or registered
	KeyBatchSize = "batch_size" // Config-sync batch size in use
	KeyChanges   = "changes"    // Number of changes in a config-sync batch or change set

	// ========================================================================
	// Disconnect / Error
	// ========================================================================
	KeyDisconnectReason = "disconnect_reason" // Structured disconnect reason
	KeyDurationMs       = "duration_ms"       // Operation duration in milliseconds
	KeyError            = "error"             // Error message
	KeyErrorCode        = "error_code"        // Numeric error code
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for the OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for the OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// AdapterFD returns a slog.Attr for the adapter's file descriptor.
func AdapterFD(fd int) slog.Attr {
	return slog.Int(KeyAdapterFD, fd)
}

// AdapterName returns a slog.Attr for the adapter's display name.
func AdapterName(name string) slog.Attr {
	return slog.String(KeyAdapterName, name)
}

// Peer returns a slog.Attr for the adapter's peer address.
func Peer(addr string) slog.Attr {
	return slog.String(KeyPeer, addr)
}

// ClientID returns a slog.Attr for a resolved client identity. Accepts
// fmt.Stringer so this package doesn't need to import internal/clientid.
func ClientID(id fmt.Stringer) slog.Attr {
	return slog.String(KeyClientID, id.String())
}

// State returns a slog.Attr for an adapter lifecycle state.
func State(s fmt.Stringer) slog.Attr {
	return slog.String(KeyState, s.String())
}

// RefCount returns a slog.Attr for an adapter's reference count.
func RefCount(n int) slog.Attr {
	return slog.Int(KeyRefCount, n)
}

// Event returns a slog.Attr for a cooperative event-loop event kind.
func Event(kind string) slog.Attr {
	return slog.String(KeyEvent, kind)
}

// Retry returns a slog.Attr for a reschedule delay, in milliseconds.
func Retry(ms float64) slog.Attr {
	return slog.Float64(KeyRetry, ms)
}

// TxnID returns a slog.Attr for a backend transaction identifier.
func TxnID(id int64) slog.Attr {
	return slog.Int64(KeyTxnID, id)
}

// MsgKind returns a slog.Attr for a wire message kind tag.
func MsgKind(kind uint32) slog.Attr {
	return slog.Any(KeyMsgKind, kind)
}

// Bytes returns a slog.Attr for a byte count.
func Bytes(n int) slog.Attr {
	return slog.Int(KeyBytes, n)
}

// FrameLen returns a slog.Attr for a decoded frame's payload length.
func FrameLen(n int) slog.Attr {
	return slog.Int(KeyFrameLen, n)
}

// QueuedBytes returns a slog.Attr for bytes currently queued for write.
func QueuedBytes(n int) slog.Attr {
	return slog.Int(KeyQueuedBytes, n)
}

// XPath returns a slog.Attr for an XPath pattern.
func XPath(pattern string) slog.Attr {
	return slog.String(KeyXPath, pattern)
}

// BatchSize returns a slog.Attr for a config-sync batch size.
func BatchSize(n int) slog.Attr {
	return slog.Int(KeyBatchSize, n)
}

// Changes returns a slog.Attr for a number of config changes.
func Changes(n int) slog.Attr {
	return slog.Int(KeyChanges, n)
}

// DisconnectReason returns a slog.Attr for a structured disconnect reason.
func DisconnectReason(reason fmt.Stringer) slog.Attr {
	return slog.String(KeyDisconnectReason, reason.String())
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}
