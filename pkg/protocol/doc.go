// Package protocol implements the BenQ projector command protocol.
//
// The protocol is text-based and half-duplex: one command goes out,
// one response comes back. What makes it hard is that firmware
// behavior varies per model and per connection type:
//
//   - Serial links (and serial-to-network bridges) emit an interactive
//     ">" prompt between commands; integrated network ports do not.
//   - Some firmware echoes the sent frame before the response, some
//     never does, and some interleaves empty lines where the echo was
//     expected.
//   - Framing strictness varies: responses may drop the leading "*",
//     the trailing "#", or both, and may embed stray whitespace.
//
// The Engine encapsulates all of this: prompt acquisition with a
// fast-path optimization, echo detection and per-session echo
// expectation, empty-line tolerance with previous-candidate recovery,
// device error-string classification, and tiered response parsing
// (strict, loose, state-only).
//
// # Errors
//
// Every failure is a typed error carrying the originating command, so
// higher layers (power state machine, capability probing) can branch
// on the specific kind with errors.As. See the *Error types.
package protocol
