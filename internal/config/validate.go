// internal/config/validate.go
package config

import (
	"fmt"
	"strconv"
)

// standardBaudRates are the line speeds the serial driver accepts.
var standardBaudRates = map[int]bool{
	1200:   true,
	2400:   true,
	4800:   true,
	9600:   true,
	19200:  true,
	38400:  true,
	57600:  true,
	115200: true,
	230400: true,
}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration; unset fields are filled in later
// by Normalize.
func Validate(cfg *Config) error {
	link := cfg.Link

	// ------------------------------------------------------------
	// CONNECTION
	// ------------------------------------------------------------

	if link.Connection.Port != "" {
		port, err := strconv.Atoi(link.Connection.Port)
		if err != nil {
			return fmt.Errorf("config: port %q is not numeric", link.Connection.Port)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("config: port %d out of range", port)
		}
	}

	if link.Connection.BaudRate != 0 {
		if link.Connection.BaudRate < 0 {
			return fmt.Errorf("config: baud_rate must be positive")
		}
		if !standardBaudRates[link.Connection.BaudRate] {
			return fmt.Errorf("config: baud_rate %d is not a standard rate", link.Connection.BaudRate)
		}
	}

	// ------------------------------------------------------------
	// TIMING
	// ------------------------------------------------------------

	// timeout_ms -1 is allowed: it disables the response deadline.
	if link.TimeoutMs < -1 {
		return fmt.Errorf("config: timeout_ms must be >= -1")
	}

	if link.PollIntervalMs < 0 {
		return fmt.Errorf("config: poll_interval_ms must be >= 0")
	}

	return nil
}
