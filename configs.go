package pydidas

import "github.com/pydidas/pydidas-go/internal/config"

// Config holds process-wide configuration, loaded from the environment.
type Config = config.Config

// LoadConfig reads Config from the environment, applying pydidas's
// defaults for anything unset.
func LoadConfig() *Config { return config.Load() }
