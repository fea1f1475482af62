package logbuffer

// HeaderWriter stamps frame headers from a default template. Write never
// touches the frame length word: the reserving CAS already stored the
// negative length, and commit publishes the positive length. writePadding,
// which has no reservation behind it, publishes the padding length itself.
type HeaderWriter struct {
	version   uint8
	flags     uint8
	frameType int16
	sessionID int32
	streamID  int32
}

// NewHeaderWriter builds a writer from the default header template
// recorded in the log metadata.
func NewHeaderWriter(logMeta *Buffer) *HeaderWriter {
	tmpl := DefaultFrameHeader(logMeta)
	return &HeaderWriter{
		version:   tmpl[versionFieldOffset],
		flags:     tmpl[flagsFieldOffset],
		frameType: int16(uint16(tmpl[typeFieldOffset]) | uint16(tmpl[typeFieldOffset+1])<<8),
		sessionID: logMeta.GetInt32(logDefaultFrameHeaderOffset + sessionIDFieldOffset),
		streamID:  logMeta.GetInt32(logDefaultFrameHeaderOffset + streamIDFieldOffset),
	}
}

// Write stamps every header field except the frame length for the frame at
// offset in term.
func (h *HeaderWriter) Write(term *Buffer, offset, termID int32) {
	hdr := term.Bytes(offset, FrameHeaderLength)
	hdr[versionFieldOffset] = h.version
	hdr[flagsFieldOffset] = h.flags
	hdr[typeFieldOffset] = byte(h.frameType)
	hdr[typeFieldOffset+1] = byte(uint16(h.frameType) >> 8)
	term.PutInt32(offset+termOffsetFieldOffset, offset)
	term.PutInt32(offset+sessionIDFieldOffset, h.sessionID)
	term.PutInt32(offset+streamIDFieldOffset, h.streamID)
	term.PutInt32(offset+termIDFieldOffset, termID)
	term.PutInt64(offset+reservedValueFieldOffset, 0)
}

// writePadding stamps a padding header covering [offset, offset+length) and
// publishes it with release ordering.
func (h *HeaderWriter) writePadding(term *Buffer, offset, length, termID int32) {
	hdr := term.Bytes(offset, FrameHeaderLength)
	hdr[versionFieldOffset] = h.version
	hdr[flagsFieldOffset] = h.flags
	hdr[typeFieldOffset] = byte(HdrTypePad)
	hdr[typeFieldOffset+1] = byte(uint16(HdrTypePad) >> 8)
	term.PutInt32(offset+termOffsetFieldOffset, offset)
	term.PutInt32(offset+sessionIDFieldOffset, h.sessionID)
	term.PutInt32(offset+streamIDFieldOffset, h.streamID)
	term.PutInt32(offset+termIDFieldOffset, termID)
	term.PutInt64(offset+reservedValueFieldOffset, 0)
	FrameLengthOrdered(term, offset, length)
}
