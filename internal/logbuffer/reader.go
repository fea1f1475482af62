package logbuffer

// FrameInfo describes a data frame delivered to a fragment handler.
type FrameInfo struct {
	TermID        int32
	TermOffset    int32
	SessionID     int32
	StreamID      int32
	Flags         uint8
	ReservedValue int64
}

// FragmentHandler receives one committed data frame. The payload view
// aliases shared memory and is valid only for the duration of the call.
type FragmentHandler func(payload []byte, info FrameInfo)

// ReadTerm scans committed frames in term starting at termOffset, invoking
// handler for each data frame until fragmentLimit data frames have been
// delivered or a frame is not yet visible. Padding frames are traversed
// but not delivered. It returns the offset after the last consumed frame
// and the number of data frames delivered.
//
// A length word observed <= 0 means the frame at that offset is still
// being reserved (or was never written); scanning stops there, preserving
// in-term order while a slow producer commits.
func ReadTerm(term *Buffer, termOffset int32, handler FragmentHandler, fragmentLimit int) (int32, int) {
	capacity := term.Capacity()
	fragments := 0

	for termOffset < capacity && fragments < fragmentLimit {
		frameLength := FrameLengthVolatile(term, termOffset)
		if frameLength <= 0 {
			break
		}

		frameOffset := termOffset
		termOffset += AlignUp(frameLength, FrameAlignment)

		if IsPaddingFrame(term, frameOffset) {
			continue
		}

		handler(
			term.Bytes(frameOffset+FrameHeaderLength, frameLength-FrameHeaderLength),
			FrameInfo{
				TermID:        FrameTermID(term, frameOffset),
				TermOffset:    frameOffset,
				SessionID:     FrameSessionID(term, frameOffset),
				StreamID:      FrameStreamID(term, frameOffset),
				Flags:         FrameFlags(term, frameOffset),
				ReservedValue: FrameReservedValue(term, frameOffset),
			},
		)
		fragments++
	}

	return termOffset, fragments
}
