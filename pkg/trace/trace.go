package trace

// Logger is the interface trace sinks implement.
// Pass nil or NoopLogger to disable tracing.
type Logger interface {
	// Log records a trace event. Implementations must be thread-safe
	// and should not block; tracing sits on the protocol hot path.
	Log(event Event)
}

// NoopLogger discards all events. Use when tracing is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// MultiLogger sends events to multiple sinks.
// Useful to combine console output (SlogAdapter) with a trace file.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger that fans out to all provided sinks.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log sends the event to all configured sinks.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = NoopLogger{}
	_ Logger = (*MultiLogger)(nil)
)
