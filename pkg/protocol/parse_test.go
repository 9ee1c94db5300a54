package protocol

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/projector-protocol/benq-go/pkg/command"
)

// newTestEngine returns an engine suitable for parse-only tests.
func newTestEngine() *Engine {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(nil, cfg)
}

func TestParseStrict(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name         string
		cmd          command.Command
		response     string
		preserveCase bool
		want         string
	}{
		{"query value", command.Query("pow"), "*POW=ON#", false, "on"},
		{"source", command.Query("sour"), "*sour=hdmi#", false, "hdmi"},
		{"lowercased by default", command.Query("modelname"), "*MODELNAME=W1110#", false, "w1110"},
		{"case preserved", command.Query("modelname"), "*MODELNAME=W1110#", true, "W1110"},
		{"loose fallback no hash", command.Query("bri"), "*bri= 51", false, "51"},
		{"loose fallback no star", command.Query("vol"), "vol=10#", false, "10"},
		{"trigger state only", command.Trigger("up"), "*UP#", false, "up"},
		{"model name bare string", command.Query("modelname"), "W700", true, "W700"},
		{"volume increment", command.New("vol", "+"), "*VOL=+#", false, "+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Parse(tt.cmd, tt.response, tt.preserveCase)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.response, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.response, got, tt.want)
			}
		})
	}
}

func TestParseErrorStrings(t *testing.T) {
	e := newTestEngine()
	cmd := command.Query("pow")

	tests := []struct {
		name     string
		response string
		target   any
	}{
		{"illegal format framed", "*Illegal format#", new(*IllegalFormatError)},
		{"illegal format bare", "illegal format", new(*IllegalFormatError)},
		{"unsupported item framed", "*Unsupported item#", new(*UnsupportedItemError)},
		{"unsupported item bare", "Unsupported item", new(*UnsupportedItemError)},
		{"block item framed", "*Block item#", new(*BlockedItemError)},
		{"block item bare", "BLOCK ITEM", new(*BlockedItemError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Parse(cmd, tt.response, false)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.response)
			}
			if !errors.As(err, tt.target) {
				t.Errorf("Parse(%q) error = %T, want %T", tt.response, err, tt.target)
			}
		})
	}
}

func TestParseCrossTalk(t *testing.T) {
	e := newTestEngine()

	_, err := e.Parse(command.Query("pow"), "*SOUR=HDMI#", false)
	var invalid *InvalidResponseError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want *InvalidResponseError", err)
	}
	if invalid.Raw != "*SOUR=HDMI#" {
		t.Errorf("Raw = %q, want the offending response", invalid.Raw)
	}
}

func TestParseGarbage(t *testing.T) {
	e := newTestEngine()

	_, err := e.Parse(command.Query("pow"), "###garbage", false)
	var invalid *InvalidResponseError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want *InvalidResponseError", err)
	}
}

func TestParseErrorCarriesCommand(t *testing.T) {
	e := newTestEngine()
	cmd := command.Query("vol")

	_, err := e.Parse(cmd, "*Block item#", false)
	var blocked *BlockedItemError
	if !errors.As(err, &blocked) {
		t.Fatalf("error = %v, want *BlockedItemError", err)
	}
	if blocked.Command.Name() != "vol" {
		t.Errorf("Command.Name() = %q, want %q", blocked.Command.Name(), "vol")
	}
}

// Encoding then parsing a synthetic response round-trips the value,
// apart from trim and case normalization.
func TestEncodeParseRoundTrip(t *testing.T) {
	e := newTestEngine()

	pairs := []struct {
		name  string
		value string
	}{
		{"pow", "on"},
		{"sour", "hdmi2"},
		{"appmod", "cine"},
		{"ct", "warm"},
		{"asp", "16:9"},
		{"ltim", "1234"},
	}

	for _, p := range pairs {
		cmd := command.Query(p.name)
		response := "*" + p.name + "=" + p.value + "#"
		got, err := e.Parse(cmd, response, false)
		if err != nil {
			t.Fatalf("Parse(%q): %v", response, err)
		}
		if got != p.value {
			t.Errorf("round trip %q = %q, want %q", response, got, p.value)
		}
	}
}
