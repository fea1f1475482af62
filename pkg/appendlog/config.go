package appendlog

import (
	"fmt"
	"time"

	"github.com/bft-labs/appendlog/internal/logbuffer"
)

// Default configuration values.
const (
	// DefaultTermLength is the default length of one term buffer.
	DefaultTermLength int32 = 16 * 1024 * 1024

	// DefaultStreamID identifies the single stream of an append log.
	DefaultStreamID int32 = 1

	// DefaultSpinLimitBeforeUnblock bounds contested claim retries before
	// a stalled slot reservation is cleared.
	DefaultSpinLimitBeforeUnblock = 100

	// DefaultPollFragmentLimit caps data frames delivered per poll
	// iteration.
	DefaultPollFragmentLimit = 10
)

// Config holds the configuration of an append log instance.
type Config struct {
	// Path is the log file location. The filesystem must support mmap;
	// /dev/shm is the natural home on Linux.
	Path string

	// TermLength is the length of one term buffer in bytes. Must be a
	// power of two in [64 KiB, 512 MiB]. Processes sharing a file must
	// agree on it.
	TermLength int32

	// StreamID is stamped into every frame header.
	StreamID int32

	// SpinLimitBeforeUnblock bounds contested claim retries with an
	// unchanged tail before a stalled slot is cleared.
	SpinLimitBeforeUnblock int

	// PollFragmentLimit caps data frames delivered per poll iteration.
	PollFragmentLimit int

	// IdleMinSleep and IdleMaxSleep bound the poll loop's sleep backoff
	// once spinning and yielding have not produced fragments.
	IdleMinSleep time.Duration
	IdleMaxSleep time.Duration
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	if c.TermLength == 0 {
		c.TermLength = DefaultTermLength
	}
	if c.StreamID == 0 {
		c.StreamID = DefaultStreamID
	}
	if c.SpinLimitBeforeUnblock <= 0 {
		c.SpinLimitBeforeUnblock = DefaultSpinLimitBeforeUnblock
	}
	if c.PollFragmentLimit <= 0 {
		c.PollFragmentLimit = DefaultPollFragmentLimit
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return logbuffer.CheckTermLength(c.TermLength)
}

// TermLengthForSize returns the term length for a requested buffer size in
// bytes: the next power of two, clamped to the valid term range. The size
// is taken as the length of one term, not as the total file size, which
// holds three terms plus metadata.
func TermLengthForSize(sizeBytes int64) int32 {
	if sizeBytes < int64(logbuffer.TermMinLength) {
		return logbuffer.TermMinLength
	}
	n := logbuffer.NextPowerOfTwo(sizeBytes)
	if n > int64(logbuffer.TermMaxLength) {
		return logbuffer.TermMaxLength
	}
	return int32(n)
}
