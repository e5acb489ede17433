package sched

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors the scheduler block of a YAML file.
type Config struct {
	Quantum         int    `yaml:"quantum"`          // 5 (by default)
	Devices         int    `yaml:"devices"`          // 1 (by default)
	LogLevel        string `yaml:"log_level"`        // info (by default)
	CheckInvariants bool   `yaml:"check_invariants"` // false (by default)
}

// DefaultConfig is used for every field a file leaves out.
func DefaultConfig() Config {
	return Config{
		Quantum:  5,
		Devices:  1,
		LogLevel: "info",
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, cfg.Validate()
}

// Validate applies the same rules as Init.
func (c Config) Validate() error {
	if c.Quantum <= 0 {
		return fmt.Errorf("quantum %d: %w", c.Quantum, ErrInvalidQuantum)
	}
	if c.Devices < 0 || c.Devices > MaxDevices {
		return fmt.Errorf("devices %d: %w", c.Devices, ErrInvalidDeviceCount)
	}
	return nil
}
