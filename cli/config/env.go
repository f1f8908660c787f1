package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env holds TOGGL_FETCH_* environment variable overrides. They sit between
// CLI flags and the config file in precedence.
type Env struct {
	APIToken  string `envconfig:"API_TOKEN"`
	Workspace string `envconfig:"WORKSPACE"`
	LogLevel  string `envconfig:"LOGLVL"`
}

// ReadEnv reads TOGGL_FETCH_* overrides from the environment.
func ReadEnv() (*Env, error) {
	var e Env
	if err := envconfig.Process("toggl_fetch", &e); err != nil {
		return nil, fmt.Errorf("reading environment overrides: %w", err)
	}
	return &e, nil
}
