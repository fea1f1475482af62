package logbuffer

import "errors"

// Errors returned at construction time. These are fatal to the call that
// produced them and can be checked with errors.Is.
var (
	// ErrInvalidTermLength is returned when a term length is out of range
	// or not a power of two, or when the resulting log would exceed the
	// mappable limit.
	ErrInvalidTermLength = errors.New("logbuffer: invalid term length")

	// ErrInvalidFrameLength is returned when a claim length cannot fit in
	// a single term.
	ErrInvalidFrameLength = errors.New("logbuffer: invalid frame length")
)
