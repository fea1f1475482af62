package logbuffer

// BufferClaim is a reserved, not-yet-committed byte range in a term. The
// payload view aliases shared memory and is invalidated by Commit or
// Abort; callers must not retain it past either call.
type BufferClaim struct {
	term        *Buffer
	offset      int32
	frameLength int32
}

func (c *BufferClaim) wrap(term *Buffer, offset, frameLength int32) {
	c.term = term
	c.offset = offset
	c.frameLength = frameLength
}

// Buffer returns the mutable payload range of exactly the claimed length.
func (c *BufferClaim) Buffer() []byte {
	return c.term.Bytes(c.offset+FrameHeaderLength, c.frameLength-FrameHeaderLength)
}

// Commit publishes the frame by storing the positive frame length with
// release ordering.
func (c *BufferClaim) Commit() {
	FrameLengthOrdered(c.term, c.offset, c.frameLength)
	c.reset()
}

// Abort discards the claim. The frame type is rewritten to padding before
// the length is published, so the reader skips the slot.
func (c *BufferClaim) Abort() {
	SetFrameType(c.term, c.offset, HdrTypePad)
	FrameLengthOrdered(c.term, c.offset, c.frameLength)
	c.reset()
}

func (c *BufferClaim) reset() {
	c.term = nil
	c.offset = 0
	c.frameLength = 0
}
