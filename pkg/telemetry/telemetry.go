// Package telemetry provides zerolog and prometheus recorders for backoffice events.
package telemetry

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Recorder matches the Telemetry interfaces of the backoffice service and commands.
type Recorder interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// NewLogger builds a zerolog logger. format "console" writes human-readable
// lines; anything else writes JSON. Unknown levels fall back to info.
func NewLogger(level, format string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "backoffice").Logger()
}

// Logger writes every event as a structured log line.
type Logger struct {
	logger zerolog.Logger
	level  zerolog.Level
}

var _ Recorder = (*Logger)(nil)

// NewLogRecorder records events at debug level on logger.
func NewLogRecorder(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger, level: zerolog.DebugLevel}
}

// WithLevel changes the level events are logged at.
func (l *Logger) WithLevel(level zerolog.Level) *Logger {
	return &Logger{logger: l.logger, level: level}
}

// Record logs event with payload as fields.
func (l *Logger) Record(_ context.Context, event string, payload map[string]any) {
	l.logger.WithLevel(l.level).Str("event", event).Fields(payload).Msg("backoffice event")
}

// Multi fans events out to every non-nil recorder.
type Multi []Recorder

var _ Recorder = Multi(nil)

// Record forwards to each recorder in order.
func (m Multi) Record(ctx context.Context, event string, payload map[string]any) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, event, payload)
		}
	}
}
