package protocol

import (
	"fmt"

	"github.com/projector-protocol/benq-go/pkg/command"
)

// IllegalFormatError indicates the projector rejected the command
// framing. The device echoes "Illegal format" when a command format
// is illegal.
type IllegalFormatError struct {
	Command command.Command
}

// Error returns the error message.
func (e *IllegalFormatError) Error() string {
	return fmt.Sprintf("illegal format for command %s", e.Command)
}

// UnsupportedItemError indicates a well-formed command that is not
// valid for this projector model. The device echoes "Unsupported item".
// A normal, expected outcome of capability probing.
type UnsupportedItemError struct {
	Command command.Command
}

// Error returns the error message.
func (e *UnsupportedItemError) Error() string {
	return fmt.Sprintf("unsupported item for command %s", e.Command)
}

// BlockedItemError indicates a command that cannot be executed in the
// projector's current condition (typically while powering up or down).
// The device echoes "Block item".
type BlockedItemError struct {
	Command command.Command
}

// Error returns the error message.
func (e *BlockedItemError) Error() string {
	return fmt.Sprintf("block item for command %s", e.Command)
}

// EmptyResponseError indicates the projector returned nothing but
// empty lines beyond the engine's tolerance.
type EmptyResponseError struct {
	Command command.Command
}

// Error returns the error message.
func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("empty response for command %s", e.Command)
}

// InvalidResponseError indicates the response did not match any
// parsing tier, or named a different command than the one issued
// (cross-talk). Raw carries the offending payload for diagnosis.
type InvalidResponseError struct {
	Command command.Command
	Raw     string
}

// Error returns the error message.
func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response for command %s: %q", e.Command, e.Raw)
}

// ResponseTimeoutError indicates no response unit completed within the
// exchange deadline. Treated as a connection-health signal: the engine
// re-arms full prompt waiting.
type ResponseTimeoutError struct {
	Command command.Command
}

// Error returns the error message.
func (e *ResponseTimeoutError) Error() string {
	return fmt.Sprintf("response timeout for command %s", e.Command)
}

// PromptTimeoutError indicates the command prompt was not obtained
// within its deadline.
type PromptTimeoutError struct {
	Command command.Command
}

// Error returns the error message.
func (e *PromptTimeoutError) Error() string {
	return fmt.Sprintf("prompt timeout for command %s", e.Command)
}

// TooBusyError indicates the connection could not be acquired within
// the serializer's wait bound. A backpressure signal, not a
// connection fault.
type TooBusyError struct {
	Command command.Command
}

// Error returns the error message.
func (e *TooBusyError) Error() string {
	return fmt.Sprintf("too busy to send command %s", e.Command)
}
