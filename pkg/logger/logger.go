// Package logger holds the process-wide zerolog instance for the tracking
// server. cmd/server calls Init once with the configured level and format;
// everything downstream pulls the shared logger with Get or derives a child
// from the one it was handed.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the shared logger.
type Options struct {
	// Level is the minimum level emitted: trace, debug, info, warn or error.
	// Anything else, including empty, means info.
	Level string
	// Pretty switches to colored console output for development runs. Leave
	// false in production for one JSON object per line.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

var (
	shared zerolog.Logger
	ready  bool
	setup  sync.Once
)

// Init builds the shared logger. Calls after the first are no-ops and return
// the logger built by the first.
func Init(opts Options) zerolog.Logger {
	setup.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var out io.Writer = os.Stdout
		if opts.Output != nil {
			out = opts.Output
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		level := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(level)

		shared = zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()
		ready = true
	})
	return shared
}

// Get returns the shared logger. Panics when Init has not run; a component
// logging before startup wiring is a bug worth crashing on.
func Get() zerolog.Logger {
	if !ready {
		panic("logger: Get before Init")
	}
	return shared
}

// Reset discards the shared logger so the next Init rebuilds it. Test helper.
func Reset() {
	setup = sync.Once{}
	shared = zerolog.Logger{}
	ready = false
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
	default:
		return zerolog.InfoLevel
	}
}
