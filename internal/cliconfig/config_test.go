package cliconfig

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TermLengthBytes != 16<<20 {
		t.Errorf("term length = %d, want 16MiB", cfg.TermLengthBytes)
	}
	if cfg.SpinLimit != 100 {
		t.Errorf("spin limit = %d, want 100", cfg.SpinLimit)
	}
	if cfg.FragmentLimit != 10 {
		t.Errorf("fragment limit = %d, want 10", cfg.FragmentLimit)
	}
	if cfg.Producers != 1 {
		t.Errorf("producers = %d, want 1", cfg.Producers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) { c.Path = "/dev/shm/x.log" }, false},
		{"missing path", func(c *Config) {}, true},
		{"zero producers", func(c *Config) { c.Path = "/x"; c.Producers = 0 }, true},
		{"negative payload", func(c *Config) { c.Path = "/x"; c.PayloadSize = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTermLengthPrecedence(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.TermLength(); got != 16<<20 {
		t.Errorf("term length = %d, want 16MiB", got)
	}

	cfg.BufferSizeMB = 64
	if got := cfg.TermLength(); got != 64<<20 {
		t.Errorf("term length with buffer size = %d, want 64MiB", got)
	}
}
