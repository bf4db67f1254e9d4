package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env holds configuration read from the environment.
type Env struct {
	SettingsPath   string        `env:"HOOKS_SETTINGS_PATH"`
	Debug          bool          `env:"HOOKS_DEBUG"`
	CommandTimeout time.Duration `env:"HOOKS_COMMAND_TIMEOUT" envDefault:"30s"`
}

// LoadEnv parses Env from the environment.
func LoadEnv() (*Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &e, nil
}

// ResolveSettingsPath returns flagPath if set, otherwise HOOKS_SETTINGS_PATH,
// otherwise the project settings path.
func (e *Env) ResolveSettingsPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if e.SettingsPath != "" {
		return e.SettingsPath
	}
	return GetProjectSettingsPath()
}
