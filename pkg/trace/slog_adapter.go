package trace

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see wire traffic in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("kind", event.Kind.String()),
	}

	switch event.Kind {
	case KindData:
		attrs = append(attrs,
			slog.String("direction", event.Direction.String()),
			slog.String("data", string(event.Data)),
			slog.Int("size", len(event.Data)),
		)
	case KindState, KindError:
		attrs = append(attrs, slog.String("detail", event.Detail))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "wire", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
