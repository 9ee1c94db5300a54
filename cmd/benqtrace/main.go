// Command benqtrace inspects wire traces recorded with benqctl's
// -record flag.
//
// Usage:
//
//	benqtrace [flags] <trace file>
//
// Flags:
//
//	-conn string   Only show events of this connection ID
//	-dir string    Only show one direction: in, out
//	-kind string   Only show one event kind: data, state, error
//
// Example:
//
//	benqtrace -dir out probe.trace
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/projector-protocol/benq-go/pkg/trace"
)

func main() {
	var (
		connID    = flag.String("conn", "", "Only show events of this connection ID")
		direction = flag.String("dir", "", "Only show one direction: in, out")
		kind      = flag.String("kind", "", "Only show one event kind: data, state, error")
	)
	flag.Parse()

	path := flag.Arg(0)
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: benqtrace [flags] <trace file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	filter, err := buildFilter(*connID, *direction, *kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := dump(path, filter); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildFilter(connID, direction, kind string) (trace.Filter, error) {
	filter := trace.Filter{ConnectionID: connID}

	switch strings.ToLower(direction) {
	case "":
	case "in":
		in := trace.DirectionIn
		filter.Direction = &in
	case "out":
		out := trace.DirectionOut
		filter.Direction = &out
	default:
		return filter, fmt.Errorf("unknown direction %q", direction)
	}

	switch strings.ToLower(kind) {
	case "":
	case "data":
		k := trace.KindData
		filter.Kind = &k
	case "state":
		k := trace.KindState
		filter.Kind = &k
	case "error":
		k := trace.KindError
		filter.Kind = &k
	default:
		return filter, fmt.Errorf("unknown event kind %q", kind)
	}

	return filter, nil
}

func dump(path string, filter trace.Filter) error {
	reader, err := trace.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading trace: %w", err)
		}
		printEvent(event)
	}
}

func printEvent(event trace.Event) {
	arrow := "<-"
	if event.Direction == trace.DirectionOut {
		arrow = "->"
	}

	switch event.Kind {
	case trace.KindData:
		fmt.Printf("%s %s %s %q\n",
			event.Timestamp.Format("15:04:05.000"), shortID(event.ConnectionID), arrow, event.Data)
	default:
		fmt.Printf("%s %s %s [%s] %s\n",
			event.Timestamp.Format("15:04:05.000"), shortID(event.ConnectionID), arrow, event.Kind, event.Detail)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
