// Package pdlog configures the process-wide structured logger.
package pdlog

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	once     sync.Once
	rootLvl  zerolog.Level = zerolog.InfoLevel
	rootBase zerolog.Logger
)

// Setup configures the process-wide zerolog root logger. level is one of
// "debug", "info", "warn", "error" (case-insensitive); unrecognised values
// default to "info". When stdout is a terminal, a colorized console writer
// is used; otherwise JSON lines are emitted, matching the teacher's
// "console in dev, JSON in prod" convention.
func Setup(level string) zerolog.Logger {
	once.Do(func() {
		rootLvl = parseLevel(level)
		zerolog.SetGlobalLevel(rootLvl)

		if isatty.IsTerminal(os.Stdout.Fd()) {
			out := colorable.NewColorableStdout()
			rootBase = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}).
				With().Timestamp().Logger()
		} else {
			rootBase = zerolog.New(os.Stdout).With().Timestamp().Logger()
		}
	})
	return rootBase
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// For returns a named sub-logger for the given subsystem (e.g. "worker",
// "workflow", "results", "restapi"). It calls Setup("info") itself; since
// Setup only configures the root logger once, an earlier Setup call keeps
// its level, and without one the root logger is configured at info level.
func For(subsystem string) zerolog.Logger {
	base := Setup("info")
	return base.With().Str("subsystem", subsystem).Logger()
}
