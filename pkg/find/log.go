package find

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates a new logger instance with a specified level and output.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("tool", "find").
		Logger()
}

// NewTestLogger creates a logger instance for tests with a specified verbosity.
func NewTestLogger(w io.Writer, verbose int) zerolog.Logger {
	var level zerolog.Level
	switch verbose {
	case 0:
		level = zerolog.WarnLevel
	case 1:
		level = zerolog.InfoLevel
	case 2:
		level = zerolog.DebugLevel
	default:
		level = zerolog.TraceLevel
	}
	return NewLogger(w, level)
}

// DefaultLogger returns a logger with default settings (warn level, stderr output).
func DefaultLogger() zerolog.Logger {
	return NewLogger(os.Stderr, zerolog.WarnLevel)
}

// DebugTopicLevel maps a -D debug topic name to the logger level that
// enables it. The topic set follows GNU find's -D option.
func DebugTopicLevel(topic string) (zerolog.Level, error) {
	switch strings.ToLower(topic) {
	case "exec", "stat", "rates", "search", "tree":
		return zerolog.DebugLevel, nil
	case "opt", "all":
		return zerolog.TraceLevel, nil
	case "help":
		return zerolog.NoLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown debug option %q; valid options are exec, opt, rates, search, stat, tree, all, help", topic)
	}
}
