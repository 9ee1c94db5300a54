package trace

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// traceEncMode is the CBOR encoder mode for trace events.
// Configured for nanosecond-precision timestamps and deterministic encoding.
var traceEncMode cbor.EncMode

// traceDecMode is the CBOR decoder mode for trace events.
var traceDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	traceEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	traceDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR decoder mode: %v", err))
	}
}

// NewEncoder creates a CBOR encoder for trace events that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return traceEncMode.NewEncoder(w)
}

// NewDecoder creates a CBOR decoder for trace events that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return traceDecMode.NewDecoder(r)
}
