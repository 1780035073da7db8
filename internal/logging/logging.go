package logging

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level is the logging verbosity selected on the command line.
type Level int

const (
	// LevelNormal shows INFO and above (default)
	LevelNormal Level = 0
	// LevelVerbose shows DEBUG and above (-v)
	LevelVerbose Level = 1
	// LevelTrace shows DEBUG and above plus HTTP headers (-vv)
	LevelTrace Level = 2
)

var currentLevel Level

// Logger is the global zerolog logger instance
var Logger zerolog.Logger

// Setup initializes zerolog with a console writer to stderr. Stdout
// stays clean for the stdio MCP transport.
func Setup(level Level) {
	currentLevel = level

	zerologLevel := zerolog.InfoLevel
	if level >= LevelVerbose {
		zerologLevel = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	Logger = zerolog.New(output).
		Level(zerologLevel).
		With().
		Timestamp().
		Logger()
}

// IsVerbose returns true if verbose/debug logging is enabled
func IsVerbose() bool {
	return currentLevel >= LevelVerbose
}

// IsTraceEnabled returns true if trace-level logging (HTTP headers) is enabled
func IsTraceEnabled() bool {
	return currentLevel >= LevelTrace
}

// ToJSON renders a value as JSON for debug logging, truncating large
// payloads.
func ToJSON(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "<marshal error>"
	}
	s := string(b)
	if len(s) > 2000 {
		return s[:2000] + "...(truncated)"
	}
	return s
}

// LeveledLogger implements retryablehttp.LeveledLogger using zerolog
type LeveledLogger struct{}

func (l *LeveledLogger) Error(msg string, keysAndValues ...interface{}) {
	Logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *LeveledLogger) Info(msg string, keysAndValues ...interface{}) {
	Logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l *LeveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	Logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *LeveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	Logger.Warn().Fields(keysAndValues).Msg(msg)
}

// Info logs at info level with key-value pairs (slog-compatible API)
func Info(msg string, keysAndValues ...interface{}) {
	Logger.Info().Fields(keysAndValues).Msg(msg)
}

// Debug logs at debug level with key-value pairs (slog-compatible API)
func Debug(msg string, keysAndValues ...interface{}) {
	Logger.Debug().Fields(keysAndValues).Msg(msg)
}

// Warn logs at warn level with key-value pairs (slog-compatible API)
func Warn(msg string, keysAndValues ...interface{}) {
	Logger.Warn().Fields(keysAndValues).Msg(msg)
}

// Error logs at error level with key-value pairs (slog-compatible API)
func Error(msg string, keysAndValues ...interface{}) {
	Logger.Error().Fields(keysAndValues).Msg(msg)
}
