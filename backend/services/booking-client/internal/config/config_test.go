package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "booking.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  baseUrl: https://api.example.com
auth:
  token: abc
redis:
  addr: localhost:6379
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "wss://api.example.com", cfg.WebsocketURL())
	assert.Equal(t, "abc", cfg.Auth.Token)
	assert.Zero(t, cfg.HTTPTimeout())
	assert.True(t, cfg.PreferencesEnabled())
	assert.Equal(t, 30*24*time.Hour, cfg.PreferenceTTL())
	assert.Equal(t, uint32(5), cfg.BreakerSettings().FailureThreshold)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Ho_Chi_Minh", loc.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  baseUrl: http://file\n")
	t.Setenv("BOOKING_API_URL", "http://env:8080")
	t.Setenv("BOOKING_WS_URL", "ws://feed:9000")
	t.Setenv("BOOKING_HTTP_TIMEOUT", "12")
	t.Setenv("BOOKING_BREAKER_FAILURES", "2")
	t.Setenv("BOOKING_BREAKER_OPEN_SECONDS", "90")
	t.Setenv("BOOKING_TIMEZONE", "UTC")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:8080", cfg.Server.BaseURL)
	assert.Equal(t, "ws://feed:9000", cfg.WebsocketURL())
	assert.Equal(t, 12*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, uint32(2), cfg.BreakerSettings().FailureThreshold)
	assert.Equal(t, 90*time.Second, cfg.BreakerSettings().OpenTimeout)
	assert.False(t, cfg.PreferencesEnabled())
}

func TestLoad_RequiresBaseURL(t *testing.T) {
	t.Setenv("BOOKING_API_URL", "")
	_, err := Load(writeConfig(t, "auth:\n  token: x\n"))
	assert.ErrorContains(t, err, "baseUrl")
}

func TestValidate_BadTimezone(t *testing.T) {
	cfg := &Config{Server: ServerConfig{BaseURL: "http://x"}, Timezone: "Mars/Olympus"}
	assert.ErrorContains(t, cfg.Validate(), "timezone")
}
