package protocol

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/projector-protocol/benq-go/pkg/command"
	"github.com/projector-protocol/benq-go/pkg/transport"
)

// Engine timing defaults.
const (
	// DefaultPromptTimeout bounds waiting for the command prompt.
	DefaultPromptTimeout = 1 * time.Second

	// DefaultResponseTimeout bounds an exchange, measured from the
	// last non-empty read.
	DefaultResponseTimeout = 5 * time.Second

	// DefaultReadDelay is the pause between read polls.
	DefaultReadDelay = 50 * time.Millisecond

	// DefaultEmptyLimit is how many consecutive empty response lines
	// are tolerated before giving up.
	DefaultEmptyLimit = 5
)

// promptMarker is the interactive prompt some connections emit
// between commands.
const promptMarker = ">"

// Config configures an Engine.
type Config struct {
	// PromptTimeout bounds waiting for the command prompt.
	PromptTimeout time.Duration

	// ResponseTimeout bounds an exchange, measured from the last
	// non-empty read.
	ResponseTimeout time.Duration

	// ReadDelay is the pause between read polls.
	ReadDelay time.Duration

	// EmptyLimit is how many consecutive empty response lines are
	// tolerated before EmptyResponseError.
	EmptyLimit int

	// Logger receives engine diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		PromptTimeout:   DefaultPromptTimeout,
		ResponseTimeout: DefaultResponseTimeout,
		ReadDelay:       DefaultReadDelay,
		EmptyLimit:      DefaultEmptyLimit,
	}
}

// Engine turns structured commands into bytes on the wire and bytes
// back into validated, normalized response values.
//
// The engine is stateful per session: it learns whether the
// connection needs an explicit prompt wait and whether the firmware
// echoes commands, and adapts for the remainder of the session.
// It is not safe for concurrent use; the session's command serializer
// guarantees a single in-flight exchange.
type Engine struct {
	conn   transport.Connection
	cfg    Config
	logger *slog.Logger

	// hasPrompt indicates the connection emits a command prompt
	// between commands and needs the prompt handshake before a send.
	hasPrompt bool

	// waitForPrompt forces the full prompt wait on the next send.
	// Cleared when a prompt is obtained, re-armed on timeouts and
	// stray prompt markers.
	waitForPrompt bool

	// expectEcho indicates the firmware echoes the sent frame before
	// its response. Disabled for the session once an expected echo
	// fails to appear.
	expectEcho bool

	// separator terminates response units: newline on prompt
	// connections, "#" on prompt-less ones.
	separator byte
}

// NewEngine creates an engine on the given connection.
// The engine starts out assuming a prompt connection with command echo.
func NewEngine(conn transport.Connection, cfg Config) *Engine {
	if cfg.PromptTimeout == 0 {
		cfg.PromptTimeout = DefaultPromptTimeout
	}
	if cfg.ResponseTimeout == 0 {
		cfg.ResponseTimeout = DefaultResponseTimeout
	}
	if cfg.ReadDelay == 0 {
		cfg.ReadDelay = DefaultReadDelay
	}
	if cfg.EmptyLimit == 0 {
		cfg.EmptyLimit = DefaultEmptyLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		conn:          conn,
		cfg:           cfg,
		logger:        logger,
		hasPrompt:     true,
		waitForPrompt: true,
		expectEcho:    true,
		separator:     '\n',
	}
}

// HasPrompt reports whether the engine treats this as a prompt connection.
func (e *Engine) HasPrompt() bool {
	return e.hasPrompt
}

// SetHasPrompt configures prompt handling and the matching response
// separator. Projectors with integrated network ports have no prompt
// and terminate responses with "#" only.
func (e *Engine) SetHasPrompt(hasPrompt bool) {
	e.hasPrompt = hasPrompt
	if hasPrompt {
		e.separator = '\n'
	} else {
		e.separator = '#'
	}
}

// DetectPrompt probes whether the connection emits a command prompt:
// write a carriage return and see if a prompt marker comes back.
// Native networked projectors don't use a prompt, while serial links
// and serial-to-network bridges do.
func (e *Engine) DetectPrompt() (bool, error) {
	e.logger.Debug("detecting prompt")

	if _, err := e.conn.Write([]byte("\r")); err != nil {
		return false, err
	}
	response, err := e.conn.Read(10)
	if err != nil {
		return false, err
	}

	if trimResponse(string(response)) == promptMarker {
		e.logger.Debug("prompt detected")
		return true, nil
	}
	e.logger.Debug("no prompt detected")
	return false, nil
}

// Exchange sends cmd and returns its parsed response value.
// preserveCase skips the usual lowercasing of the value.
func (e *Engine) Exchange(cmd command.Command, preserveCase bool) (string, error) {
	raw, err := e.ExchangeRaw(cmd)
	if err != nil {
		return "", err
	}
	return e.Parse(cmd, raw, preserveCase)
}

// ExchangeRaw sends cmd and returns the raw response unit after echo
// and empty-line handling, without structural parsing. Used for raw
// frames whose response format is unknown.
func (e *Engine) ExchangeRaw(cmd command.Command) (string, error) {
	if err := e.send(cmd); err != nil {
		return "", err
	}
	return e.readRaw(cmd)
}

// send obtains the prompt if this connection requires one, then
// writes the framed command followed by a carriage return.
func (e *Engine) send(cmd command.Command) error {
	if e.hasPrompt {
		if err := e.waitPrompt(cmd); err != nil {
			return err
		}
	}

	e.logger.Debug("sending command", "frame", cmd.Frame())
	_, err := e.conn.Write([]byte(cmd.Frame() + "\r"))
	return err
}

// waitPrompt obtains the command prompt.
//
// Once a quick single-byte CR round-trip has succeeded, subsequent
// sends use that fast path until a failure re-arms full waiting.
// The full wait writes a CR, then classifies reads: empty (resend
// CR), ends in the prompt marker (done), whitespace-only or a bare
// marker (keep waiting), anything else (log, keep waiting).
func (e *Engine) waitPrompt(cmd command.Command) error {
	// Discard whatever a previous exchange left behind.
	if err := e.conn.Reset(); err != nil {
		return err
	}

	if !e.waitForPrompt {
		if _, err := e.conn.Write([]byte("\r")); err != nil {
			return err
		}
		data, err := e.conn.Read(1)
		if err != nil {
			return err
		}
		if len(data) == 1 && data[0] == '\r' {
			return nil
		}
		// Fast path broke down; next send waits in full again.
		e.waitForPrompt = true
		return nil
	}

	start := time.Now()
	for {
		data, err := e.conn.Read(100)
		if err != nil {
			return err
		}

		response := bytes.Trim(data, "\x00")
		trimmed := trimResponse(string(response))
		switch {
		case len(response) == 0:
			if _, err := e.conn.Write([]byte("\r")); err != nil {
				return err
			}
		case response[len(response)-1] == '>':
			e.waitForPrompt = false
			return nil
		case trimmed == "" || trimmed == promptMarker:
			// Stray whitespace or an already-consumed marker.
		default:
			e.logger.Warn("unexpected response while waiting for prompt", "response", string(response))
		}

		if time.Since(start) > e.cfg.PromptTimeout {
			return &PromptTimeoutError{Command: cmd}
		}
		time.Sleep(e.cfg.ReadDelay)
	}
}

// readUnit reads one response unit: bytes up to the connection's
// separator, accepted early when any end-of-response byte ("#", CR,
// LF, NUL) appears. The unit is trimmed of protocol whitespace.
// Exceeding the response deadline (measured from the last non-empty
// read) re-arms full prompt waiting and fails.
func (e *Engine) readUnit(cmd command.Command) (string, error) {
	var unit []byte
	last := time.Now()
	for {
		chunk, err := e.conn.ReadUntil(e.separator)
		if err != nil {
			return "", err
		}
		if len(chunk) > 0 {
			unit = append(unit, chunk...)
			if bytes.ContainsAny(chunk, "#\n\r\x00") {
				response := trimResponse(string(unit))
				e.logger.Debug("response", "raw", response)
				return response, nil
			}
			last = time.Now()
		}

		if time.Since(last) > e.cfg.ResponseTimeout {
			e.logger.Warn("timeout while waiting for response", "frame", cmd.Frame())
			e.waitForPrompt = true
			return "", &ResponseTimeoutError{Command: cmd}
		}
		time.Sleep(e.cfg.ReadDelay)
	}
}

// readRaw reads response units until it has the actual response,
// skipping prompt markers and the command echo, and tolerating
// empty lines.
//
// Empty lines are tolerated up to the configured limit, with a brief
// pause after the first (some projectors return an empty line instead
// of the command echo). Beyond the limit: if an echo was confirmed
// and a previous candidate exists, that candidate was actually the
// response misread as the echo, so it is returned; otherwise the
// exchange fails with EmptyResponseError.
//
// If an echo was expected but never observed, echo expectation is
// disabled for the rest of the session and the current line is
// treated as the response.
func (e *Engine) readRaw(cmd command.Command) (string, error) {
	frame := cmd.Frame()
	emptyLines := 0
	echoReceived := false
	previous := ""
	hasPrevious := false

	for {
		if emptyLines > e.cfg.EmptyLimit {
			e.logger.Error("empty response limit exceeded", "frame", frame)
			if echoReceived && hasPrevious {
				// The previous response was misinterpreted as the
				// command echo while it actually was the response.
				return previous, nil
			}
			return "", &EmptyResponseError{Command: cmd}
		}

		response, err := e.readUnit(cmd)
		if err != nil {
			return "", err
		}
		if response == "" {
			emptyLines++
			if emptyLines > 1 {
				time.Sleep(e.cfg.ReadDelay)
			}
			continue
		}

		if response == promptMarker {
			e.logger.Debug("response is command prompt")
			e.waitForPrompt = true
			continue
		}

		if cmd.IsQuery() && !echoReceived && response == frame {
			e.logger.Debug("command echo received")
			echoReceived = true
			e.expectEcho = true
			continue
		}

		if !echoReceived && response == promptMarker+frame {
			e.logger.Debug("command echo received")
			echoReceived = true
			e.expectEcho = true
			continue
		}

		if e.expectEcho && !echoReceived {
			if !cmd.IsQuery() && response == frame {
				// For non-query actions the echo and the response can
				// be identical; keep it as a candidate.
				echoReceived = true
				previous = response
				hasPrevious = true
				continue
			}
			e.logger.Warn("no command echo received")
			e.expectEcho = false
		}

		return response, nil
	}
}

// ExpectsEcho reports whether the engine still expects command echoes.
func (e *Engine) ExpectsEcho() bool {
	return e.expectEcho
}

