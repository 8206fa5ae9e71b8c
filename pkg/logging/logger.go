// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Logger is the logging capability handed to the retrieval core.
// *zerolog.Logger satisfies it, so callers pass &logger.
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	Fatal() *zerolog.Event
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr. Never stdout: it carries the MCP
	// protocol in serve mode.
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel maps a configured level name to a zerolog level. Names are
// case-insensitive and "warning" is accepted for warn.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = string(LevelWarn)
	}

	switch LogLevel(name) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return zerolog.ParseLevel(name)
	}
	return zerolog.NoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
}

// parseLevel is ParseLevel with unknown names falling back to info.
func parseLevel(level LogLevel) zerolog.Level {
	l, err := ParseLevel(string(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	l := zerolog.Nop()
	return &l
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache operations (hit/miss, key)
//   - Batch windows and per-item fetch outcomes
//   - Optimization level chosen for a batch
//   - Moderate response sizes (15k-20k estimated tokens)
//
// Info: Normal operation events
//   - Retrieval completed (counts, sources, duration)
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Per-item fetch failures inside a batch
//   - Large responses (>= 20k estimated tokens)
//   - Retry attempts, 429 cool-downs
//   - Cache errors (fallback to direct request)
//
// Error: Error conditions requiring attention
//   - Every item of a batch failed
//   - Failed requests (after retries)
//   - Configuration errors
//
// Context Fields:
//   - request_id: tool call identifier
//   - model: card, dashboard, table, database, collection, field
//   - resource: upstream resource path kind
//   - optimization_level: STANDARD, AGGRESSIVE, ULTRA_MINIMAL
//   - concurrency: in-flight cap for the batch
//   - category: upstream error category (not_found, auth, client, rate_limit, server, network)
//   - source: cache or api
