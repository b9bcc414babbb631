package pydidas

import (
	"github.com/rs/zerolog"

	"github.com/pydidas/pydidas-go/internal/pdlog"
)

// SetupLogging configures the process-wide root logger at the given level
// ("debug", "info", "warn", "error").
func SetupLogging(level string) zerolog.Logger { return pdlog.Setup(level) }

// Logger returns a named sub-logger for subsystem, e.g. "worker" or
// "restapi".
func Logger(subsystem string) zerolog.Logger { return pdlog.For(subsystem) }
