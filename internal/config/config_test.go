package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/christophhagen/RendezvousClient/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8080", cfg.ServerURL)
	require.Equal(t, "cli", cfg.AppID)
	require.Equal(t, 0, cfg.LogLevel)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RENDEZVOUS_SERVER_URL", "https://rendezvous.example.com")
	t.Setenv("RENDEZVOUS_APP_ID", "mobile")
	t.Setenv("RENDEZVOUS_LOG_LEVEL", "-4")
	t.Setenv("RENDEZVOUS_HOME", "/tmp/rv")

	cfg, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "https://rendezvous.example.com", cfg.ServerURL)
	require.Equal(t, "mobile", cfg.AppID)
	require.Equal(t, -4, cfg.LogLevel)
	require.Equal(t, "/tmp/rv", cfg.Home)
}
