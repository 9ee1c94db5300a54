// Package trace records raw projector protocol traffic for diagnosis.
//
// Projector firmware varies wildly in framing strictness, echo behavior
// and prompt handling. When a device misbehaves, a byte-level trace of
// an exchange is usually the only way to work out what the firmware
// actually sent. This package captures that trace.
//
// # Events
//
// Each Event records one observation on a connection: bytes written,
// bytes read, or a connection state change. Events carry a connection
// ID so traces from reconnecting sessions remain attributable.
//
// # Sinks
//
// Logger is the sink interface. Implementations:
//   - NoopLogger discards events (tracing disabled)
//   - FileLogger appends CBOR-encoded events to a file
//   - SlogAdapter prints events through a slog.Logger at debug level
//   - MultiLogger fans out to several sinks
//
// Reader streams events back out of a FileLogger file.
package trace
