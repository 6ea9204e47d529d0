// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"devlink/internal/bus"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
link:
  connection:
    host: device.local
    port: "9100"
    serial_device: /dev/ttyUSB0
    baud_rate: 57600
  timeout_ms: 2500
  poll_interval_ms: 5
  debug: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))
	Normalize(cfg)

	require.Equal(t, "device.local", cfg.Link.Connection.Host)
	require.Equal(t, "9100", cfg.Link.Connection.Port)
	require.True(t, cfg.Link.Connection.Serial())
	require.Equal(t, 57600, cfg.Link.Connection.BaudRate)
	require.Equal(t, 2500*time.Millisecond, cfg.Link.Timeout())
	require.Equal(t, 5*time.Millisecond, cfg.Link.PollInterval())
	require.True(t, cfg.Link.Debug)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadBadYaml(t *testing.T) {
	path := writeConfig(t, "link: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsBadPort(t *testing.T) {
	for _, port := range []string{"abc", "0", "70000", "-1"} {
		cfg := &Config{}
		cfg.Link.Connection.Port = port
		require.Error(t, Validate(cfg), "port %q", port)
	}
}

func TestValidateRejectsBadBaud(t *testing.T) {
	cfg := &Config{}
	cfg.Link.Connection.BaudRate = 12345
	require.Error(t, Validate(cfg))

	cfg.Link.Connection.BaudRate = -9600
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsBadTimeout(t *testing.T) {
	cfg := &Config{}
	cfg.Link.TimeoutMs = -2
	require.Error(t, Validate(cfg))
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, Validate(cfg))
	Normalize(cfg)

	require.Equal(t, DefaultHost, cfg.Link.Connection.Host)
	require.Equal(t, bus.DefaultPort, cfg.Link.Connection.Port)
	require.Equal(t, bus.DefaultBaudRate, cfg.Link.Connection.BaudRate)
	require.False(t, cfg.Link.Connection.Serial())
	require.Equal(t, DefaultTimeoutMs, cfg.Link.TimeoutMs)
	require.Equal(t, DefaultPollIntervalMs, cfg.Link.PollIntervalMs)
}

func TestNormalizeKeepsDisabledTimeout(t *testing.T) {
	cfg := &Config{}
	cfg.Link.TimeoutMs = -1
	require.NoError(t, Validate(cfg))
	Normalize(cfg)

	require.Equal(t, -1, cfg.Link.TimeoutMs)
	require.Equal(t, time.Duration(0), cfg.Link.Timeout())
}
