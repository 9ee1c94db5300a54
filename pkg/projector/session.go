package projector

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/projector-protocol/benq-go/pkg/command"
	"github.com/projector-protocol/benq-go/pkg/config"
	"github.com/projector-protocol/benq-go/pkg/protocol"
	"github.com/projector-protocol/benq-go/pkg/trace"
	"github.com/projector-protocol/benq-go/pkg/transport"
)

// DefaultLockTimeout bounds waiting for the command serializer before
// an exchange fails with TooBusyError.
const DefaultLockTimeout = 1 * time.Second

// Fallback power settle times used before a capability table is
// resolved.
const (
	DefaultPowerOnTime  = 90 * time.Second
	DefaultPowerOffTime = 120 * time.Second
)

// Listener is notified of device state changes by the background
// poller. value is a PowerStatus for the power command, bool for
// mute, int for volume and string for everything else.
type Listener func(command string, value any)

// Config configures a Session.
type Config struct {
	// ModelHint preselects the capability table until the projector
	// reports its model name.
	ModelHint string

	// HasPrompt forces prompt handling on or off. When nil the
	// session probes the connection during Connect. Serial links and
	// serial-to-network bridges use a prompt, native networked
	// projectors do not.
	HasPrompt *bool

	// Interval enables the background poller when nonzero.
	Interval time.Duration

	// LockTimeout bounds waiting for the command serializer.
	// Defaults to DefaultLockTimeout.
	LockTimeout time.Duration

	// Engine holds the protocol timing knobs.
	Engine protocol.Config

	// Logger receives session diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Trace receives raw wire traffic when set.
	Trace trace.Logger
}

// Session is a client session with a BenQ projector.
//
// All exchanges with the projector are serialized: the protocol is
// half duplex and allows a single outstanding command. Methods are
// safe for concurrent use.
type Session struct {
	conn        transport.Connection
	engine      *protocol.Engine
	logger      *slog.Logger
	lockTimeout time.Duration
	interval    time.Duration
	hasPrompt   *bool

	// sem is the capacity-one command serializer.
	sem chan struct{}

	// now is replaced in tests to control the power settle windows.
	now func() time.Time

	mu                  sync.Mutex
	model               *config.Model
	state               State
	powerTimestamp      time.Time
	useVolumeIncrements bool
	initialized         bool
	listeners           []Listener
	listenerCommands    []string
	pollerDone          chan struct{}
}

// New creates a session on the given connection.
func New(conn transport.Connection, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	if cfg.Trace != nil {
		conn.SetTrace(cfg.Trace, uuid.NewString())
	}

	engineCfg := cfg.Engine
	if engineCfg.Logger == nil {
		engineCfg.Logger = logger
	}

	s := &Session{
		conn:        conn,
		engine:      protocol.NewEngine(conn, engineCfg),
		logger:      logger,
		lockTimeout: cfg.LockTimeout,
		interval:    cfg.Interval,
		hasPrompt:   cfg.HasPrompt,
		sem:         make(chan struct{}, 1),
		now:         time.Now,
	}
	if cfg.HasPrompt != nil {
		s.engine.SetHasPrompt(*cfg.HasPrompt)
	}
	s.state.Model = cfg.ModelHint
	s.state.UniqueID = conn.String()
	return s
}

// NewSerial creates a session for a projector on a serial port.
// Serial links always use a command prompt.
func NewSerial(device string, baudRate int, cfg Config) (*Session, error) {
	if !transport.ValidBaudRate(baudRate) {
		return nil, fmt.Errorf("invalid baud rate %d", baudRate)
	}

	hasPrompt := true
	cfg.HasPrompt = &hasPrompt
	s := New(transport.NewSerialConnection(device, baudRate), cfg)
	s.state.UniqueID = device
	return s, nil
}

// NewTelnet creates a session for a projector reachable over TCP,
// either a native network port or a serial-to-network bridge.
func NewTelnet(host string, port int, cfg Config) *Session {
	s := New(transport.NewTelnetConnection(host, port), cfg)
	s.state.UniqueID = fmt.Sprintf("%s:%d", host, port)
	return s
}

// Connected reports whether the transport connection is open.
func (s *Session) Connected() bool {
	return s.conn.IsOpen()
}

// Busy reports whether an exchange is in flight. The background
// poller uses it to skip a cycle instead of queueing behind user
// commands.
func (s *Session) Busy() bool {
	return len(s.sem) > 0
}

// UniqueID identifies the projector: the MAC address when the model
// reports one, the connection address otherwise.
func (s *Session) UniqueID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UniqueID
}

// ModelName returns the reported projector model, e.g. "W1110".
func (s *Session) ModelName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Model
}

// Model returns the resolved capability table, nil before Connect.
func (s *Session) Model() *config.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// PowerStatus returns the session's view of the power state.
func (s *Session) PowerStatus() PowerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Power
}

// Snapshot returns a copy of the device state known to the session.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// SupportsCommand reports whether the projector supports the command.
// Before a capability table is resolved every command is assumed
// supported.
func (s *Session) SupportsCommand(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model == nil || s.model.SupportsCommand(name)
}

// Connect opens the connection and initializes the session: prompt
// detection, power state, model name, capability table and unique ID.
// Calling Connect on an initialized session only reopens the
// connection.
func (s *Session) Connect() error {
	if err := s.ensureOpen(); err != nil {
		return fmt.Errorf("connecting to %s: %w", s.conn, err)
	}

	s.mu.Lock()
	initialized := s.initialized
	modelName := s.state.Model
	s.mu.Unlock()
	if initialized {
		return nil
	}

	// Before the model is known, restrict to the minimal table.
	if modelName == "" {
		minimal, err := config.Minimal()
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.model = minimal
		s.mu.Unlock()
	}

	if s.hasPrompt == nil {
		hasPrompt, err := s.engine.DetectPrompt()
		if err != nil {
			return fmt.Errorf("detecting prompt: %w", err)
		}
		s.hasPrompt = &hasPrompt
	}
	s.engine.SetHasPrompt(*s.hasPrompt)

	power, err := s.Send(command.Query(command.Power))
	if err != nil {
		var promptErr *protocol.PromptTimeoutError
		var blockedErr *protocol.BlockedItemError
		var emptyErr *protocol.EmptyResponseError
		switch {
		case errors.As(err, &promptErr):
			return fmt.Errorf("no command prompt, is the projector properly connected: %w", err)
		case errors.As(err, &blockedErr):
			s.logger.Error("unable to retrieve power state, projector may be powering down", "error", err)
		case errors.As(err, &emptyErr):
			s.logger.Warn("empty response to power query", "error", err)
		default:
			return fmt.Errorf("retrieving power state: %w", err)
		}
	}

	if err := s.detectModel(power); err != nil {
		return err
	}

	if s.SupportsCommand("macaddr") {
		if mac, ok := s.SendCommand("macaddr"); ok && mac != "" {
			s.mu.Lock()
			s.state.UniqueID = strings.ToLower(mac)
			s.mu.Unlock()
		}
	}

	s.logger.Info("device available", "connection", s.conn.String())

	s.UpdatePower()

	s.mu.Lock()
	s.initialized = true
	start := len(s.listeners) > 0 && s.interval > 0 && s.pollerDone == nil
	s.mu.Unlock()
	if start {
		s.startPoller()
	}
	return nil
}

// detectModel queries the model name and resolves the capability
// table. A changed model name is only adopted while the projector is
// on or when no model is known yet; during power transitions some
// models report garbage.
func (s *Session) detectModel(power string) error {
	model, err := s.exchange(command.Query(command.ModelName), true)
	if err != nil {
		var illegalErr *protocol.IllegalFormatError
		var blockedErr *protocol.BlockedItemError
		switch {
		case errors.As(err, &illegalErr):
			// The W1000 answers the model query with an illegal
			// format error.
			s.logger.Error("unable to retrieve projector model", "error", err)
		case errors.As(err, &blockedErr):
			// The W1070 and W1250 block the model query while off.
			s.logger.Error("unable to retrieve projector model", "power", power, "error", err)
		default:
			return fmt.Errorf("retrieving model: %w", err)
		}
	}

	s.mu.Lock()
	if model != "" && model != s.state.Model && (power == "on" || s.state.Model == "") {
		if s.state.Model != "" {
			s.logger.Warn("projector model changed", "from", s.state.Model, "to", model)
		}
		s.state.Model = model
		s.model = nil
	}
	modelName := s.state.Model
	resolved := s.model
	s.mu.Unlock()

	if resolved == nil && modelName != "" {
		resolved, err = config.Load(modelName)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.model = resolved
		s.mu.Unlock()
	}
	return nil
}

// Disconnect stops the poller and closes the connection.
func (s *Session) Disconnect() error {
	s.stopPoller()
	if s.conn.IsOpen() {
		return s.conn.Close()
	}
	return nil
}

// AddListener registers a state change listener and subscribes the
// given extra commands for polling. With a poll interval configured
// on an initialized session, registering the first listener starts
// the background poller.
func (s *Session) AddListener(listener Listener, commands ...string) {
	s.mu.Lock()
	for _, c := range commands {
		c = strings.ToLower(c)
		subscribed := false
		for _, existing := range s.listenerCommands {
			if existing == c {
				subscribed = true
				break
			}
		}
		if !subscribed {
			s.listenerCommands = append(s.listenerCommands, c)
		}
	}
	start := false
	if listener != nil {
		s.listeners = append(s.listeners, listener)
		start = s.initialized && s.interval > 0 && s.pollerDone == nil
	}
	s.mu.Unlock()

	if start {
		s.startPoller()
	}
}

// Send performs one strict exchange: it serializes on the session
// lock, sends cmd and returns the parsed response value. Protocol
// errors are returned to the caller unmodified, so blocked items and
// timeouts can be told apart. Capability probing depends on this.
func (s *Session) Send(cmd command.Command) (string, error) {
	return s.exchange(cmd, false)
}

// SendCommand sends a status query for the given command and returns
// its value. Protocol errors are logged and reported as not ok;
// connection errors and response timeouts additionally close the
// connection so the next exchange reconnects cleanly.
func (s *Session) SendCommand(name string) (string, bool) {
	return s.SendCommandAction(name, command.ActionQuery)
}

// SendCommandAction sends a command with the given action. Same
// lenient error handling as SendCommand.
func (s *Session) SendCommandAction(name, action string) (string, bool) {
	if !s.SupportsCommand(name) {
		s.logger.Warn("command not supported", "command", name)
		return "", false
	}

	value, err := s.exchange(command.New(name, action), false)
	if err == nil {
		return value, true
	}

	var connErr *transport.ConnectionError
	var timeoutErr *protocol.ResponseTimeoutError
	switch {
	case errors.As(err, &connErr), errors.As(err, &timeoutErr):
		s.logger.Error("problem communicating with projector", "id", s.UniqueID(), "error", err)
		s.conn.Close()
	default:
		s.logger.Debug("command failed", "command", name, "action", action, "error", err)
	}
	return "", false
}

// SendRawCommand sends a frame verbatim and returns the raw response
// unit. The response is not validated or normalized. A response
// timeout closes the connection.
func (s *Session) SendRawCommand(frame string) (string, error) {
	cmd := command.Raw(frame)

	if err := s.ensureOpen(); err != nil {
		return "", err
	}
	if err := s.acquire(cmd); err != nil {
		return "", err
	}
	defer s.release()

	raw, err := s.engine.ExchangeRaw(cmd)
	if err != nil {
		var timeoutErr *protocol.ResponseTimeoutError
		if errors.As(err, &timeoutErr) {
			s.conn.Close()
		}
		return "", err
	}
	return raw, nil
}

func (s *Session) exchange(cmd command.Command, preserveCase bool) (string, error) {
	if err := s.ensureOpen(); err != nil {
		return "", err
	}
	if err := s.acquire(cmd); err != nil {
		return "", err
	}
	defer s.release()

	return s.engine.Exchange(cmd, preserveCase)
}

func (s *Session) ensureOpen() error {
	if s.conn.IsOpen() {
		return nil
	}
	s.logger.Info("connecting", "connection", s.conn.String())
	return s.conn.Open()
}

func (s *Session) acquire(cmd command.Command) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-time.After(s.lockTimeout):
		return &protocol.TooBusyError{Command: cmd}
	}
}

func (s *Session) release() {
	<-s.sem
}

// settleTimes returns the model's power settle windows. Callers hold
// s.mu.
func (s *Session) settleTimes() (on, off time.Duration) {
	on, off = DefaultPowerOnTime, DefaultPowerOffTime
	if s.model != nil {
		if s.model.PowerOnTime > 0 {
			on = s.model.PowerOnTime
		}
		if s.model.PowerOffTime > 0 {
			off = s.model.PowerOffTime
		}
	}
	return on, off
}
