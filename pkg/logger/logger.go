// Package logger holds the portal's process-wide zerolog logger.
//
// cmd/portal builds it once from LOG_LEVEL and LOG_PRETTY. Every entry carries
// the "service" field; the session registry, bank API client, audit
// dispatcher and notifier each log through Component so their lines can be
// filtered by the "component" field.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options is read once, by the first Init.
type Options struct {
	Level   string    // trace, debug, info, warn or error; anything else is info
	Pretty  bool      // console output for local runs, JSON otherwise
	Output  io.Writer // stdout when nil
	Service string
}

var (
	mu   sync.Mutex
	root *zerolog.Logger
)

// Init builds the portal logger from opts and returns it. Later calls return
// the logger built by the first one.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root != nil {
		return *root
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	with := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		with = with.Str("service", opts.Service)
	}
	l := with.Logger()
	root = &l
	return l
}

// Get returns the portal logger. It panics before Init.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		panic("logger: Get() called before Init()")
	}
	return *root
}

// Component tags the portal logger with the name of the subsystem logging,
// e.g. "session" or "bankapi".
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the logger built by Init. Tests only.
func Reset() {
	mu.Lock()
	root = nil
	mu.Unlock()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}
