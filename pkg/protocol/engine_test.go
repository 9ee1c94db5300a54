package protocol

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/projector-protocol/benq-go/pkg/command"
)

func newEngineOn(conn *fakeConn) *Engine {
	cfg := Config{
		PromptTimeout:   100 * time.Millisecond,
		ResponseTimeout: 100 * time.Millisecond,
		ReadDelay:       time.Millisecond,
		EmptyLimit:      5,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return NewEngine(conn, cfg)
}

func TestExchangeWithEcho(t *testing.T) {
	conn := scripted("*pow=?#", "*POW=ON#")
	e := newEngineOn(conn)
	e.SetHasPrompt(false)

	value, err := e.Exchange(command.Query("pow"), false)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if value != "on" {
		t.Errorf("value = %q, want %q", value, "on")
	}
	if len(conn.writes) != 1 || conn.writes[0] != "*pow=?#\r" {
		t.Errorf("writes = %q, want single framed command with CR", conn.writes)
	}
	if !e.ExpectsEcho() {
		t.Error("ExpectsEcho() = false after a confirmed echo")
	}
}

func TestExchangeWithoutEchoDisablesExpectation(t *testing.T) {
	conn := scripted("*POW=ON#")
	e := newEngineOn(conn)
	e.SetHasPrompt(false)

	value, err := e.Exchange(command.Query("pow"), false)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if value != "on" {
		t.Errorf("value = %q, want %q", value, "on")
	}
	if e.ExpectsEcho() {
		t.Error("ExpectsEcho() = true after echo never arrived")
	}
}

func TestExchangePromptPrefixedEcho(t *testing.T) {
	conn := scripted(">*pow=?#", "*POW=ON#")
	e := newEngineOn(conn)
	e.SetHasPrompt(false)

	value, err := e.Exchange(command.Query("pow"), false)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if value != "on" {
		t.Errorf("value = %q, want %q", value, "on")
	}
}

func TestExchangeSkipsBarePromptMarker(t *testing.T) {
	conn := scripted(">\n", "*pow=?#", "*POW=ON#")
	e := newEngineOn(conn)
	e.SetHasPrompt(false)
	e.waitForPrompt = false

	value, err := e.Exchange(command.Query("pow"), false)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if value != "on" {
		t.Errorf("value = %q, want %q", value, "on")
	}
	if !e.waitForPrompt {
		t.Error("a stray prompt marker must re-arm full prompt waiting")
	}
}

func TestEmptyResponseLimit(t *testing.T) {
	conn := scripted("\n", "\n", "\n", "\n", "\n", "\n")
	e := newEngineOn(conn)
	e.SetHasPrompt(false)

	_, err := e.Exchange(command.Query("pow"), false)
	var empty *EmptyResponseError
	if !errors.As(err, &empty) {
		t.Fatalf("error = %v, want *EmptyResponseError", err)
	}
	if empty.Command.Name() != "pow" {
		t.Errorf("Command.Name() = %q, want %q", empty.Command.Name(), "pow")
	}
}

func TestEmptyResponsesAfterEchoReturnPreviousCandidate(t *testing.T) {
	// Some firmware interleaves an empty line where the echo was
	// expected: the "echo" consumed earlier was actually the response.
	conn := scripted("*pow=on#", "\n", "\n", "\n", "\n", "\n", "\n")
	e := newEngineOn(conn)
	e.SetHasPrompt(false)

	value, err := e.Exchange(command.New("pow", "on"), false)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if value != "on" {
		t.Errorf("value = %q, want %q", value, "on")
	}
}

func TestResponseTimeout(t *testing.T) {
	conn := scripted() // nothing ever arrives
	e := newEngineOn(conn)
	e.SetHasPrompt(false)

	_, err := e.Exchange(command.Query("pow"), false)
	var timeout *ResponseTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("error = %v, want *ResponseTimeoutError", err)
	}
	if timeout.Command.Name() != "pow" {
		t.Errorf("Command.Name() = %q, want %q", timeout.Command.Name(), "pow")
	}
	if !e.waitForPrompt {
		t.Error("a response timeout must re-arm full prompt waiting")
	}
}

func TestPromptWaitHandshake(t *testing.T) {
	// Full wait: empty read resends CR, then a prompt arrives.
	conn := scripted("", ">", "*pow=?#", "*POW=ON#")
	e := newEngineOn(conn)

	value, err := e.Exchange(command.Query("pow"), false)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if value != "on" {
		t.Errorf("value = %q, want %q", value, "on")
	}
	if conn.resets != 1 {
		t.Errorf("resets = %d, want 1", conn.resets)
	}
	// CR for the handshake, then the framed command.
	if len(conn.writes) != 2 || conn.writes[0] != "\r" || conn.writes[1] != "*pow=?#\r" {
		t.Errorf("writes = %q, want CR then framed command", conn.writes)
	}
	if e.waitForPrompt {
		t.Error("waitForPrompt still set after successful handshake")
	}
}

func TestPromptFastPath(t *testing.T) {
	conn := scripted("", ">", "*pow=?#", "*POW=ON#", // full handshake exchange
		"\r", "*pow=?#", "*POW=OFF#") // fast-path exchange
	e := newEngineOn(conn)

	if _, err := e.Exchange(command.Query("pow"), false); err != nil {
		t.Fatalf("first Exchange: %v", err)
	}
	value, err := e.Exchange(command.Query("pow"), false)
	if err != nil {
		t.Fatalf("second Exchange: %v", err)
	}
	if value != "off" {
		t.Errorf("value = %q, want %q", value, "off")
	}
	if e.waitForPrompt {
		t.Error("fast path succeeded but waitForPrompt is set")
	}
}

func TestPromptFastPathFailureRearms(t *testing.T) {
	conn := scripted("", ">", "*pow=?#", "*POW=ON#", // full handshake exchange
		"", "*pow=?#", "*POW=OFF#") // fast-path CR read times out
	e := newEngineOn(conn)

	if _, err := e.Exchange(command.Query("pow"), false); err != nil {
		t.Fatalf("first Exchange: %v", err)
	}
	value, err := e.Exchange(command.Query("pow"), false)
	if err != nil {
		t.Fatalf("second Exchange: %v", err)
	}
	if value != "off" {
		t.Errorf("value = %q, want %q", value, "off")
	}
	if !e.waitForPrompt {
		t.Error("fast path failed but waitForPrompt is not re-armed")
	}
}

func TestPromptTimeout(t *testing.T) {
	conn := scripted() // the device never answers the CR
	e := newEngineOn(conn)

	_, err := e.Exchange(command.Query("pow"), false)
	var timeout *PromptTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("error = %v, want *PromptTimeoutError", err)
	}
}

func TestDetectPrompt(t *testing.T) {
	conn := scripted("\r\n>")
	e := newEngineOn(conn)

	hasPrompt, err := e.DetectPrompt()
	if err != nil {
		t.Fatalf("DetectPrompt: %v", err)
	}
	if !hasPrompt {
		t.Error("DetectPrompt() = false, want true")
	}

	conn = scripted("")
	e = newEngineOn(conn)
	hasPrompt, err = e.DetectPrompt()
	if err != nil {
		t.Fatalf("DetectPrompt: %v", err)
	}
	if hasPrompt {
		t.Error("DetectPrompt() = true, want false")
	}
}

func TestRawExchangeSkipsParsing(t *testing.T) {
	conn := scripted("*menu=on#", "*MENU=ON#")
	e := newEngineOn(conn)
	e.SetHasPrompt(false)

	raw, err := e.ExchangeRaw(command.Raw("*menu=on#"))
	if err != nil {
		t.Fatalf("ExchangeRaw: %v", err)
	}
	// The first unit matches the frame but raw commands are not
	// queries, so with echo expected it is kept as a candidate and the
	// next unit is the response.
	if raw != "*MENU=ON#" {
		t.Errorf("raw = %q, want %q", raw, "*MENU=ON#")
	}
}
