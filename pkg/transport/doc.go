// Package transport provides the byte-stream connections used to reach
// BenQ projectors.
//
// Two connection types share the Connection contract:
//
//   - SerialConnection: a direct RS-232 link (8 data bits, no parity,
//     one stop bit) via go.bug.st/serial.
//   - TelnetConnection: a raw TCP socket, either a projector's built-in
//     network port or a serial-to-network bridge.
//
// # Timeout semantics
//
// Reads are bounded by a short per-connection timeout (50 ms serial,
// 200 ms telnet) and return whatever bytes arrived, possibly none,
// rather than failing. The protocol engine layers its own prompt and
// response deadlines on top of these short reads.
//
// Write failures on broken-pipe or reset conditions close the
// connection as a side effect and surface as *ConnectionError, so a
// dead link is never written to twice.
//
// # Tracing
//
// Both connection types accept a trace.Logger via SetTrace to record
// raw wire traffic for protocol diagnosis.
package transport
