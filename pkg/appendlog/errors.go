package appendlog

import (
	"errors"

	"github.com/bft-labs/appendlog/internal/app"
	"github.com/bft-labs/appendlog/internal/logbuffer"
)

// Errors returned by the public API, checked with errors.Is.
var (
	// ErrInvalidTermLength is returned when a term length is out of range
	// or not a power of two.
	ErrInvalidTermLength = logbuffer.ErrInvalidTermLength

	// ErrInvalidFrameLength is returned when a claim cannot fit in a
	// single term.
	ErrInvalidFrameLength = logbuffer.ErrInvalidFrameLength

	// ErrAlreadyRunning is returned when StartPolling is called on a
	// running instance.
	ErrAlreadyRunning = app.ErrAlreadyRunning

	// ErrNotRunning is returned when Stop is called on a stopped
	// instance.
	ErrNotRunning = app.ErrNotRunning

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = app.ErrShutdownTimeout

	// ErrCleanerCrashed is returned when a start is attempted after a
	// cleaner failure poisoned the instance.
	ErrCleanerCrashed = app.ErrCleanerCrashed

	// ErrClosed is returned when the log has been closed.
	ErrClosed = errors.New("appendlog: closed")
)
