package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/projector-protocol/benq-go/pkg/trace"
)

// timeNow is swapped out in tests for deterministic event timestamps.
var timeNow = time.Now

// Transport errors.
var (
	// ErrNotOpen indicates an operation on a closed connection.
	ErrNotOpen = errors.New("connection not open")

	// ErrConnectionTimeout indicates the connection could not be
	// established within the dial timeout.
	ErrConnectionTimeout = errors.New("connection timeout")
)

// ConnectionError indicates the link to the projector failed.
// The connection is closed as a side effect before the error is returned.
type ConnectionError struct {
	// Conn describes the connection ("/dev/ttyUSB0", "host:port").
	Conn string

	// Err is the underlying cause.
	Err error
}

// Error returns the error message.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s: %v", e.Conn, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Connection is the byte-stream contract the protocol engine consumes.
//
// Implementations are not safe for concurrent use; the session's
// command serializer guarantees a single in-flight exchange.
type Connection interface {
	// Open establishes the connection. Opening an open connection is a no-op.
	Open() error

	// IsOpen reports whether the connection is established.
	IsOpen() bool

	// Close closes the connection. Close is idempotent.
	Close() error

	// Reset discards unread input and flushes pending output.
	Reset() error

	// Read reads up to maxBytes bytes, bounded by the connection's read
	// timeout. A timeout yields an empty slice, not an error.
	Read(maxBytes int) ([]byte, error)

	// ReadUntil reads bytes until the separator is seen, returning data
	// including the separator. On timeout the partial data read so far
	// is returned without error.
	ReadUntil(separator byte) ([]byte, error)

	// Write writes data, returning the number of bytes written.
	// Broken-pipe and reset conditions close the connection and return
	// a *ConnectionError.
	Write(data []byte) (int, error)

	// SetTrace configures wire tracing. Pass nil to disable.
	SetTrace(logger trace.Logger, connID string)

	// String describes the connection endpoint.
	String() string
}

// tracer emits trace events for a connection. The zero value is disabled.
type tracer struct {
	logger trace.Logger
	connID string
}

func (t *tracer) set(logger trace.Logger, connID string) {
	t.logger = logger
	t.connID = connID
}

func (t *tracer) data(direction trace.Direction, data []byte) {
	if t.logger == nil || len(data) == 0 {
		return
	}
	// Copy: callers reuse their buffers.
	buf := make([]byte, len(data))
	copy(buf, data)
	t.logger.Log(trace.Event{
		Timestamp:    timeNow(),
		ConnectionID: t.connID,
		Direction:    direction,
		Kind:         trace.KindData,
		Data:         buf,
	})
}

func (t *tracer) state(detail string) {
	if t.logger == nil {
		return
	}
	t.logger.Log(trace.Event{
		Timestamp:    timeNow(),
		ConnectionID: t.connID,
		Kind:         trace.KindState,
		Detail:       detail,
	})
}

func (t *tracer) error(detail string) {
	if t.logger == nil {
		return
	}
	t.logger.Log(trace.Event{
		Timestamp:    timeNow(),
		ConnectionID: t.connID,
		Kind:         trace.KindError,
		Detail:       detail,
	})
}

// Compile-time interface satisfaction checks.
var (
	_ Connection = (*SerialConnection)(nil)
	_ Connection = (*TelnetConnection)(nil)
)
