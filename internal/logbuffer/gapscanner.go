package logbuffer

// Gap describes an uncommitted region discovered between committed frames
// and a high-water mark.
type Gap struct {
	TermID int32
	Offset int32
	Length int32
}

// ScanForGap walks contiguous committed frames in term from rebuildOffset.
// At the first zero length word before hwm it measures the gap: the run of
// bytes up to the next committed frame or hwm, whichever comes first. It
// reports the gap through handler and returns its start offset, or hwm if
// the committed frames reach the high-water mark without a gap.
//
// This is a diagnostic scan; it does not consume frames or move any
// position.
func ScanForGap(term *Buffer, termID, rebuildOffset, hwm int32, handler func(Gap)) int32 {
	offset := rebuildOffset
	for offset < hwm {
		frameLength := FrameLengthVolatile(term, offset)
		if frameLength <= 0 {
			break
		}
		offset += AlignUp(frameLength, FrameAlignment)
	}
	if offset >= hwm {
		return hwm
	}

	gapBegin := offset
	end := offset
	for end < hwm && FrameLengthVolatile(term, end) == 0 {
		end += FrameAlignment
	}
	if end > hwm {
		end = hwm
	}

	handler(Gap{TermID: termID, Offset: gapBegin, Length: end - gapBegin})
	return gapBegin
}
