package core

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to Logger.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps log.
func NewZerologLogger(log zerolog.Logger) ZerologLogger {
	return ZerologLogger{log: log}
}

// NewConsoleLogger builds a timestamped logger for CLI use. format "json"
// writes JSON lines; anything else uses the console writer.
func NewConsoleLogger(w io.Writer, level, format string) (ZerologLogger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return ZerologLogger{}, fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}
	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w}
	}
	return NewZerologLogger(zerolog.New(out).Level(lvl).With().Timestamp().Logger()), nil
}

// Zerolog exposes the wrapped logger.
func (l ZerologLogger) Zerolog() zerolog.Logger { return l.log }

func (l ZerologLogger) Debug(msg string, args ...any) { l.log.Debug().Fields(args).Msg(msg) }
func (l ZerologLogger) Info(msg string, args ...any)  { l.log.Info().Fields(args).Msg(msg) }
func (l ZerologLogger) Warn(msg string, args ...any)  { l.log.Warn().Fields(args).Msg(msg) }
func (l ZerologLogger) Error(msg string, args ...any) { l.log.Error().Fields(args).Msg(msg) }
