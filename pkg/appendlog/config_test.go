package appendlog

import (
	"errors"
	"testing"
)

func TestConfigSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	if cfg.TermLength != DefaultTermLength {
		t.Errorf("term length = %d, want %d", cfg.TermLength, DefaultTermLength)
	}
	if cfg.StreamID != DefaultStreamID {
		t.Errorf("stream id = %d, want %d", cfg.StreamID, DefaultStreamID)
	}
	if cfg.SpinLimitBeforeUnblock != DefaultSpinLimitBeforeUnblock {
		t.Errorf("spin limit = %d, want %d", cfg.SpinLimitBeforeUnblock, DefaultSpinLimitBeforeUnblock)
	}
	if cfg.PollFragmentLimit != DefaultPollFragmentLimit {
		t.Errorf("fragment limit = %d, want %d", cfg.PollFragmentLimit, DefaultPollFragmentLimit)
	}
}

func TestConfigSetDefaultsKeepsExplicit(t *testing.T) {
	cfg := Config{TermLength: 1 << 20, PollFragmentLimit: 50}
	cfg.SetDefaults()

	if cfg.TermLength != 1<<20 {
		t.Errorf("term length = %d, want explicit 1MiB", cfg.TermLength)
	}
	if cfg.PollFragmentLimit != 50 {
		t.Errorf("fragment limit = %d, want explicit 50", cfg.PollFragmentLimit)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"valid", Config{Path: "/tmp/x.log", TermLength: 1 << 20}, nil},
		{"missing path", Config{TermLength: 1 << 20}, nil},
		{"bad term length", Config{Path: "/tmp/x.log", TermLength: 1000}, ErrInvalidTermLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.SetDefaults()
			err := tt.cfg.Validate()
			switch {
			case tt.name == "missing path":
				if err == nil {
					t.Error("missing path should fail validation")
				}
			case tt.wantErr == nil:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			default:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestTermLengthForSize(t *testing.T) {
	tests := []struct {
		size int64
		want int32
	}{
		{1, 64 * 1024},
		{64 * 1024, 64 * 1024},
		{(64 * 1024) + 1, 128 * 1024},
		{16 << 20, 16 << 20},
		{1 << 40, 512 << 20},
	}
	for _, tt := range tests {
		if got := TermLengthForSize(tt.size); got != tt.want {
			t.Errorf("TermLengthForSize(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}
