package logbuffer

// Frame header layout (32 bytes, little-endian, offsets from frame start):
//
//	int32  frameLength    // 0x00: written last; negative while reserved
//	uint8  version        // 0x04
//	uint8  flags          // 0x05
//	int16  frameType      // 0x06
//	int32  termOffset     // 0x08
//	int32  sessionID      // 0x0C
//	int32  streamID       // 0x10
//	int32  termID         // 0x14
//	int64  reservedValue  // 0x18
const (
	// FrameHeaderLength is the fixed size of a frame header in bytes.
	FrameHeaderLength int32 = 32

	// FrameAlignment is the byte alignment of every frame start. The stored
	// frame length is the unaligned header-plus-payload size; a frame
	// occupies that length rounded up to this alignment.
	FrameAlignment int32 = 32
)

// Header field offsets relative to the frame start.
const (
	lengthFieldOffset        int32 = 0
	versionFieldOffset       int32 = 4
	flagsFieldOffset         int32 = 5
	typeFieldOffset          int32 = 6
	termOffsetFieldOffset    int32 = 8
	sessionIDFieldOffset     int32 = 12
	streamIDFieldOffset      int32 = 16
	termIDFieldOffset        int32 = 20
	reservedValueFieldOffset int32 = 24
)

// Frame types.
const (
	// HdrTypePad marks a padding frame covering unused space at term end.
	HdrTypePad int16 = 0x00
	// HdrTypeData marks an application data frame.
	HdrTypeData int16 = 0x01
	// HdrTypeSM marks a status message frame. Reserved; nothing emits it.
	HdrTypeSM int16 = 0x03
)

// CurrentVersion is the frame protocol version stamped into every header.
const CurrentVersion uint8 = 0

// Frame flags. An unfragmented frame carries both begin and end.
const (
	FrameFlagBegin        uint8 = 0x80
	FrameFlagEnd          uint8 = 0x40
	FrameFlagUnfragmented uint8 = FrameFlagBegin | FrameFlagEnd
)

// AlignUp rounds value up to the next multiple of alignment, which must be
// a power of two.
func AlignUp(value, alignment int32) int32 {
	return (value + alignment - 1) &^ (alignment - 1)
}

// FrameLengthVolatile reads the frame length at frameOffset with acquire
// ordering. A value <= 0 means the frame is not yet visible.
func FrameLengthVolatile(term *Buffer, frameOffset int32) int32 {
	return term.GetInt32Volatile(frameOffset + lengthFieldOffset)
}

// FrameLengthOrdered publishes the frame length at frameOffset with release
// ordering. This is the commit point: all header and payload bytes stored
// before this call are visible to a reader that observes the length.
func FrameLengthOrdered(term *Buffer, frameOffset, length int32) {
	term.PutInt32Ordered(frameOffset+lengthFieldOffset, length)
}

// FrameType returns the type field of the frame at frameOffset.
func FrameType(term *Buffer, frameOffset int32) int16 {
	b := term.Bytes(frameOffset+typeFieldOffset, 2)
	return int16(uint16(b[0]) | uint16(b[1])<<8)
}

// SetFrameType stores the type field of the frame at frameOffset.
func SetFrameType(term *Buffer, frameOffset int32, frameType int16) {
	b := term.Bytes(frameOffset+typeFieldOffset, 2)
	b[0] = byte(frameType)
	b[1] = byte(uint16(frameType) >> 8)
}

// IsPaddingFrame reports whether the frame at frameOffset is a padding
// frame.
func IsPaddingFrame(term *Buffer, frameOffset int32) bool {
	return FrameType(term, frameOffset) == HdrTypePad
}

// FrameVersion returns the version byte of the frame at frameOffset.
func FrameVersion(term *Buffer, frameOffset int32) uint8 {
	return term.Bytes(frameOffset+versionFieldOffset, 1)[0]
}

// FrameFlags returns the flags byte of the frame at frameOffset.
func FrameFlags(term *Buffer, frameOffset int32) uint8 {
	return term.Bytes(frameOffset+flagsFieldOffset, 1)[0]
}

// FrameTermOffset returns the termOffset field of the frame at frameOffset.
func FrameTermOffset(term *Buffer, frameOffset int32) int32 {
	return term.GetInt32(frameOffset + termOffsetFieldOffset)
}

// FrameSessionID returns the sessionID field of the frame at frameOffset.
func FrameSessionID(term *Buffer, frameOffset int32) int32 {
	return term.GetInt32(frameOffset + sessionIDFieldOffset)
}

// FrameStreamID returns the streamID field of the frame at frameOffset.
func FrameStreamID(term *Buffer, frameOffset int32) int32 {
	return term.GetInt32(frameOffset + streamIDFieldOffset)
}

// FrameTermID returns the termID field of the frame at frameOffset.
func FrameTermID(term *Buffer, frameOffset int32) int32 {
	return term.GetInt32(frameOffset + termIDFieldOffset)
}

// FrameReservedValue returns the reservedValue field of the frame at
// frameOffset.
func FrameReservedValue(term *Buffer, frameOffset int32) int64 {
	return term.GetInt64(frameOffset + reservedValueFieldOffset)
}
