package trace

import "time"

// Event represents a single observation on a projector connection.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates byte flow, for Kind KindData.
	Direction Direction `cbor:"3,keyasint"`

	// Kind classifies the event.
	Kind Kind `cbor:"4,keyasint"`

	// Data is the raw bytes read or written (KindData only).
	Data []byte `cbor:"5,keyasint,omitempty"`

	// Detail is a free-form annotation for state events
	// (e.g. "open", "close", "reset", or an error message).
	Detail string `cbor:"6,keyasint,omitempty"`
}

// Direction indicates the direction of byte flow.
type Direction uint8

const (
	// DirectionIn indicates bytes read from the projector.
	DirectionIn Direction = 0
	// DirectionOut indicates bytes written to the projector.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Kind classifies the event type.
type Kind uint8

const (
	// KindData indicates raw bytes on the wire.
	KindData Kind = 0
	// KindState indicates a connection state change (open/close/reset).
	KindState Kind = 1
	// KindError indicates a connection-level error.
	KindError Kind = 2
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindData:
		return "DATA"
	case KindState:
		return "STATE"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
