package logbuffer

import "runtime"

// Claim results packed into the low 32 bits of the appender return value.
// A positive value is the new tail offset after the claimed frame.
const (
	// ResultTripped means the claim ran off the end of the term; the
	// caller rotates to the next partition and retries.
	ResultTripped int32 = -1

	// ResultFailed means the claim could not be satisfied in any term.
	ResultFailed int32 = -2
)

// DefaultSpinLimit is the number of contested retries with an unchanged
// raw tail before a stalled slot reservation is cleared.
const DefaultSpinLimit = 100

// TermAppender reserves and publishes frames in one term on behalf of any
// number of concurrent producers. The raw tail in the term metadata is the
// single shared cursor; individual slots are reserved with a CAS on their
// length word, which keeps non-conflicting reservations wait-free and lets
// a peer recover a slot whose reserver died mid-claim.
type TermAppender struct {
	term       *Buffer
	meta       *Buffer
	termLength int32
}

// NewTermAppender returns an appender over one (term buffer, term
// metadata) pair.
func NewTermAppender(term, meta *Buffer, termLength int32) *TermAppender {
	return &TermAppender{term: term, meta: meta, termLength: termLength}
}

// RawTail reads the appender's raw tail with acquire ordering.
func (a *TermAppender) RawTail() int64 {
	return RawTailVolatile(a.meta)
}

// packResult packs a term id with an offset or result code.
func packResult(termID, offsetOrResult int32) int64 {
	return int64(termID)<<32 | int64(uint32(offsetOrResult))
}

// ResultOffset extracts the offset-or-result half of a claim result.
func ResultOffset(result int64) int32 {
	return int32(result & 0xFFFFFFFF)
}

// ResultTermID extracts the term id half of a claim result.
func ResultTermID(result int64) int32 {
	return int32(result >> 32)
}

// Claim reserves a frame slot for length payload bytes, stamps its header
// through header, and wraps claim around the payload range. The returned
// value packs the term id with the new tail offset on success, or with
// ResultTripped when the claim ran past the term end (a padding frame then
// covers the remainder and the caller rotates), or with ResultFailed when
// the frame cannot fit in an empty term.
//
// spinLimit bounds the contested retries tolerated while the raw tail
// stands still before the stalled slot is forcibly cleared.
func (a *TermAppender) Claim(header *HeaderWriter, length int32, spinLimit int, claim *BufferClaim) int64 {
	frameLength := length + FrameHeaderLength
	aligned := AlignUp(frameLength, FrameAlignment)
	if aligned > a.termLength {
		return packResult(TermIDFromRawTail(a.RawTail()), ResultFailed)
	}
	if spinLimit <= 0 {
		spinLimit = DefaultSpinLimit
	}

	spins := 0
	lastTail := int64(-1)
	for {
		rawTail := RawTailVolatile(a.meta)
		termID := TermIDFromRawTail(rawTail)
		termOffset := TermOffsetFromRawTail(rawTail)

		if rawTail != lastTail {
			lastTail = rawTail
			spins = 0
		}

		resultingOffset := termOffset + aligned
		if resultingOffset > a.termLength {
			a.trip(header, rawTail, aligned)
			return packResult(termID, ResultTripped)
		}

		if a.term.CompareAndSetInt32(termOffset, 0, -frameLength) {
			PutRawTailOrdered(a.meta, rawTail+int64(aligned))
			header.Write(a.term, termOffset, termID)
			claim.wrap(a.term, termOffset, frameLength)
			return packResult(termID, resultingOffset)
		}

		spins++
		if spins > spinLimit {
			a.unblock(rawTail, termOffset)
			spins = 0
		}
		runtime.Gosched()
	}
}

// trip bumps the raw tail past the term end so every producer observes the
// trip, then covers any remaining slack with a single padding frame. Only
// the first tripper observes a pre-bump offset inside the term, so the
// padding frame is written exactly once.
func (a *TermAppender) trip(header *HeaderWriter, observedRawTail int64, aligned int32) {
	pre := GetAndAddRawTail(a.meta, int64(aligned))
	termID := TermIDFromRawTail(pre)
	preOffset := TermOffsetFromRawTail(pre)
	if TermIDFromRawTail(observedRawTail) != termID {
		return
	}
	if preOffset < a.termLength {
		header.writePadding(a.term, preOffset, a.termLength-preOffset, termID)
	}
}

// unblock recovers progress when the raw tail has stood still past the
// spin budget. A negative slot word is a reservation whose owner stalled
// before bumping the tail: clearing it back to zero lets a live producer
// take the slot. A positive slot word is a committed frame whose owner
// stalled between commit and tail bump: advancing the tail past it lets
// claims continue behind it.
func (a *TermAppender) unblock(rawTail int64, termOffset int32) {
	slot := a.term.GetInt32Volatile(termOffset)
	switch {
	case slot < 0:
		a.term.CompareAndSetInt32(termOffset, slot, 0)
	case slot > 0:
		aligned := AlignUp(slot, FrameAlignment)
		CompareAndSetRawTail(a.meta, rawTail, rawTail+int64(aligned))
	}
}
