// Package config loads client configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config contains client configuration parameters. CLI flags override the
// environment where both are given.
type Config struct {
	// ServerURL is the base URL of the Rendezvous server.
	ServerURL string `env:"RENDEZVOUS_SERVER_URL" envDefault:"http://127.0.0.1:8080"`

	// AppID identifies the application on this device, at most 10 bytes.
	AppID string `env:"RENDEZVOUS_APP_ID" envDefault:"cli"`

	// Home is the directory holding the encrypted device state.
	Home string `env:"RENDEZVOUS_HOME"`

	// LogLevel is the slog level (0 = info, -4 = debug).
	LogLevel int `env:"RENDEZVOUS_LOG_LEVEL" envDefault:"0"`

	// AdminToken is the base64 admin token for control operations.
	AdminToken string `env:"RENDEZVOUS_ADMIN_TOKEN"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
