// Package cliconfig holds the layered configuration of the appendlog CLI:
// defaults, then TOML config file, then APPENDLOG_* environment variables,
// then explicitly set flags, later layers winning.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"
)

// Config holds CLI configuration for the appendlog tool.
type Config struct {
	Path string

	TermLengthBytes  int
	BufferSizeMB     int
	SpinLimit        int
	FragmentLimit    int
	StreamID         int
	IdleMinSleep     time.Duration
	IdleMaxSleep     time.Duration
	Wait             bool
	Producers        int
	PayloadSize      int
	MessagesPerSec   int
	MessageCount     int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		TermLengthBytes: 16 << 20,
		SpinLimit:       100,
		FragmentLimit:   10,
		StreamID:        1,
		Producers:       1,
		PayloadSize:     256,
		MessageCount:    0,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if c.BufferSizeMB < 0 {
		return fmt.Errorf("buffer size must be non-negative")
	}
	if c.Producers <= 0 {
		return fmt.Errorf("producers must be positive")
	}
	if c.PayloadSize <= 0 {
		return fmt.Errorf("payload size must be positive")
	}
	return nil
}

// TermLength resolves the effective term length in bytes: an explicit
// buffer size in MiB takes precedence over the term length setting.
func (c *Config) TermLength() int64 {
	if c.BufferSizeMB > 0 {
		return int64(c.BufferSizeMB) << 20
	}
	return int64(c.TermLengthBytes)
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not
// changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if
// valid. Used for environment variables.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
