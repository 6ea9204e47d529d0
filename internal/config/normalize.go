// internal/config/normalize.go
package config

import (
	"time"

	"devlink/internal/bus"
)

const (
	// DefaultHost is where the responder runs unless told otherwise.
	DefaultHost = "localhost"

	// DefaultTimeoutMs bounds the response wait. A peer that never
	// replies must not hang the client forever.
	DefaultTimeoutMs = 1000

	// DefaultPollIntervalMs is the sleep between receive attempts.
	DefaultPollIntervalMs = 1
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	link := &cfg.Link

	if link.Connection.Host == "" {
		link.Connection.Host = DefaultHost
	}
	if link.Connection.Port == "" {
		link.Connection.Port = bus.DefaultPort
	}
	if link.Connection.BaudRate == 0 {
		link.Connection.BaudRate = bus.DefaultBaudRate
	}

	if link.PollIntervalMs == 0 {
		link.PollIntervalMs = DefaultPollIntervalMs
	}

	// timeout_ms: unset gets the default deadline; -1 is the explicit
	// "wait forever" escape hatch and is left alone.
	if link.TimeoutMs == 0 {
		link.TimeoutMs = DefaultTimeoutMs
	}
}

// Timeout converts timeout_ms to a deadline duration; -1 maps to zero,
// which disables the deadline downstream.
func (l LinkConfig) Timeout() time.Duration {
	if l.TimeoutMs < 0 {
		return 0
	}
	return time.Duration(l.TimeoutMs) * time.Millisecond
}

// PollInterval converts poll_interval_ms to a duration.
func (l LinkConfig) PollInterval() time.Duration {
	return time.Duration(l.PollIntervalMs) * time.Millisecond
}
