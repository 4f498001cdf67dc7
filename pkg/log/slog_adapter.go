package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes tree events to an slog.Logger.
// Useful for development when you want to see dispatches in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Rejected events are logged at
// Warn level, everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("event_id", event.EventID),
		slog.Uint64("seq", event.Sequence),
		slog.String("type", event.Type.String()),
		slog.String("outcome", event.Outcome.String()),
	}

	if event.URI != "" {
		attrs = append(attrs, slog.String("uri", event.URI))
	}
	if event.Owner != "" {
		attrs = append(attrs, slog.String("owner", event.Owner))
	}
	if event.Listeners != nil {
		attrs = append(attrs, slog.Int("listeners", *event.Listeners))
	}
	if event.Properties > 0 {
		attrs = append(attrs, slog.Int("properties", event.Properties))
	}

	level := slog.LevelDebug
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	if event.Outcome == OutcomeRejected {
		level = slog.LevelWarn
	}

	a.logger.LogAttrs(context.Background(), level, "scenegraph", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
