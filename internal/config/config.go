// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Link LinkConfig `yaml:"link"`
}

type LinkConfig struct {
	Connection ConnectionConfig `yaml:"connection"`

	TimeoutMs      int  `yaml:"timeout_ms"`
	PollIntervalMs int  `yaml:"poll_interval_ms"`
	Debug          bool `yaml:"debug"`
}

// ---- CONNECTION ----

// ConnectionConfig selects exactly one transport: serial when
// SerialDevice is set, TCP otherwise.
type ConnectionConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	SerialDevice string `yaml:"serial_device"`
	BaudRate     int    `yaml:"baud_rate"`
}

// Serial reports whether the serial transport is selected.
func (c ConnectionConfig) Serial() bool {
	return c.SerialDevice != ""
}

// Load reads and parses a yaml config file.
// Defaults for anything left unset are applied by Normalize.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}
