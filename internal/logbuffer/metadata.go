package logbuffer

// Term metadata accessors. Each partition has one metadata block holding
// the 64-bit raw tail counter and the 32-bit partition status word.

// RawTailVolatile reads a partition's raw tail with acquire ordering.
func RawTailVolatile(meta *Buffer) int64 {
	return meta.GetInt64Volatile(termTailCounterOffset)
}

// PutRawTail stores a partition's raw tail without ordering.
func PutRawTail(meta *Buffer, rawTail int64) {
	meta.PutInt64(termTailCounterOffset, rawTail)
}

// PutRawTailOrdered stores a partition's raw tail with release ordering.
func PutRawTailOrdered(meta *Buffer, rawTail int64) {
	meta.PutInt64Ordered(termTailCounterOffset, rawTail)
}

// CompareAndSetRawTail atomically replaces a partition's raw tail if it
// equals expected.
func CompareAndSetRawTail(meta *Buffer, expected, updated int64) bool {
	return meta.CompareAndSetInt64(termTailCounterOffset, expected, updated)
}

// GetAndAddRawTail atomically adds delta to a partition's raw tail and
// returns the previous value.
func GetAndAddRawTail(meta *Buffer, delta int64) int64 {
	return meta.GetAndAddInt64(termTailCounterOffset, delta)
}

// StatusVolatile reads a partition's status word with acquire ordering.
func StatusVolatile(meta *Buffer) int32 {
	return meta.GetInt32Volatile(termStatusOffset)
}

// PutStatusOrdered stores a partition's status word with release ordering.
func PutStatusOrdered(meta *Buffer, status int32) {
	meta.PutInt32Ordered(termStatusOffset, status)
}

// Log metadata accessors.

// ActivePartitionIndex reads the active partition index with acquire
// ordering.
func ActivePartitionIndex(logMeta *Buffer) int {
	return int(logMeta.GetInt32Volatile(logActivePartitionIndexOffset))
}

// PutActivePartitionIndexOrdered stores the active partition index with
// release ordering.
func PutActivePartitionIndexOrdered(logMeta *Buffer, index int) {
	logMeta.PutInt32Ordered(logActivePartitionIndexOffset, int32(index))
}

// InitialTermID reads the initial term id recorded at creation.
func InitialTermID(logMeta *Buffer) int32 {
	return logMeta.GetInt32(logInitialTermIDOffset)
}

// putInitialTermID records the initial term id. Written once at creation.
func putInitialTermID(logMeta *Buffer, termID int32) {
	logMeta.PutInt32(logInitialTermIDOffset, termID)
}

// DefaultFrameHeader returns the 32-byte default header template recorded
// in the log metadata.
func DefaultFrameHeader(logMeta *Buffer) []byte {
	return logMeta.Bytes(logDefaultFrameHeaderOffset, FrameHeaderLength)
}

// StoreDefaultFrameHeader records the default header template in the log
// metadata. The template carries version, flags, type, session id and
// stream id; per-frame fields are stamped at claim time.
func StoreDefaultFrameHeader(logMeta *Buffer, sessionID, streamID int32) {
	offset := logDefaultFrameHeaderOffset
	hdr := logMeta.Bytes(offset, FrameHeaderLength)
	for i := range hdr {
		hdr[i] = 0
	}
	hdr[versionFieldOffset] = CurrentVersion
	hdr[flagsFieldOffset] = FrameFlagUnfragmented
	hdr[typeFieldOffset] = byte(HdrTypeData)
	hdr[typeFieldOffset+1] = byte(uint16(HdrTypeData) >> 8)
	logMeta.PutInt32(offset+sessionIDFieldOffset, sessionID)
	logMeta.PutInt32(offset+streamIDFieldOffset, streamID)
}
