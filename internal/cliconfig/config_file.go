package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config but uses strings for durations to make TOML
// friendly.
type fileConfig struct {
	Path            string `toml:"path"`
	TermLengthBytes int    `toml:"term_length_bytes"`
	BufferSizeMB    int    `toml:"buffer_size_mb"`
	SpinLimit       int    `toml:"spin_limit_before_unblock"`
	FragmentLimit   int    `toml:"poll_fragment_limit"`
	StreamID        int    `toml:"stream_id"`
	IdleMinSleep    string `toml:"idle_min_sleep"`
	IdleMaxSleep    string `toml:"idle_max_sleep"`
	Wait            *bool  `toml:"wait"`
	Producers       int    `toml:"producers"`
	PayloadSize     int    `toml:"payload_size"`
	MessagesPerSec  int    `toml:"messages_per_sec"`
	MessageCount    int    `toml:"message_count"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.appendlog/config.toml if the user home directory is
// accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".appendlog", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("path", fc.Path, &cfg.Path)
	s.setInt("term-length", fc.TermLengthBytes, &cfg.TermLengthBytes)
	s.setInt("buffer-size-mb", fc.BufferSizeMB, &cfg.BufferSizeMB)
	s.setInt("spin-limit", fc.SpinLimit, &cfg.SpinLimit)
	s.setInt("fragment-limit", fc.FragmentLimit, &cfg.FragmentLimit)
	s.setInt("stream-id", fc.StreamID, &cfg.StreamID)
	s.setInt("producers", fc.Producers, &cfg.Producers)
	s.setInt("payload-size", fc.PayloadSize, &cfg.PayloadSize)
	s.setInt("rate", fc.MessagesPerSec, &cfg.MessagesPerSec)
	s.setInt("count", fc.MessageCount, &cfg.MessageCount)
	s.setBool("wait", fc.Wait, &cfg.Wait)

	if err := s.setDuration("idle-min-sleep", fc.IdleMinSleep, &cfg.IdleMinSleep); err != nil {
		return err
	}
	if err := s.setDuration("idle-max-sleep", fc.IdleMaxSleep, &cfg.IdleMaxSleep); err != nil {
		return err
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
