package logbuffer

import (
	"fmt"
	"math/bits"
	"os"
)

// PartitionCount is the number of term partitions in a log. Exactly one is
// active at any instant; the cleaner has two full term lifetimes to finish
// before the active cursor wraps back.
const PartitionCount = 3

// Term length bounds. A term length must be a power of two within these.
const (
	TermMinLength int32 = 64 * 1024
	TermMaxLength int32 = 512 * 1024 * 1024
)

// maxMappedLength bounds the total file size; multi-segment mappings are
// not supported.
const maxMappedLength int64 = 1 << 31

// Term metadata layout, one block per partition. The raw tail and the
// status word sit on separate cache lines.
const (
	termTailCounterOffset int32 = 0
	termStatusOffset      int32 = 64
)

// Partition status values.
const (
	PartitionClean int32 = iota
	PartitionNeedsCleaning
	PartitionInUse
)

// Log metadata layout. Fields are spread across cache lines to avoid false
// sharing between the rotator, producers, and the consumer.
const (
	logActivePartitionIndexOffset int32 = 0
	logInitialTermIDOffset        int32 = 64
	logDefaultFrameHeaderOffset   int32 = 128
)

var pageSize = int32(os.Getpagesize())

// TermMetaDataLength returns the page-aligned size of one term metadata
// block.
func TermMetaDataLength() int32 {
	return pageSize
}

// LogMetaDataLength returns the page-aligned size of the log metadata
// block.
func LogMetaDataLength() int32 {
	return pageSize
}

// CheckTermLength validates a requested term length.
func CheckTermLength(termLength int32) error {
	if termLength < TermMinLength || termLength > TermMaxLength {
		return fmt.Errorf("%w: %d not in [%d, %d]",
			ErrInvalidTermLength, termLength, TermMinLength, TermMaxLength)
	}
	if termLength&(termLength-1) != 0 {
		return fmt.Errorf("%w: %d is not a power of two", ErrInvalidTermLength, termLength)
	}
	return nil
}

// LogLength returns the total file length for the given term length.
func LogLength(termLength int32) int64 {
	return int64(PartitionCount)*(int64(termLength)+int64(TermMetaDataLength())) +
		int64(LogMetaDataLength())
}

// TermLengthForLogLength recovers the term length a log file of logLength
// bytes was created with, inverting [LogLength].
func TermLengthForLogLength(logLength int64) (int32, error) {
	meta := int64(PartitionCount)*int64(TermMetaDataLength()) + int64(LogMetaDataLength())
	if logLength <= meta || (logLength-meta)%PartitionCount != 0 {
		return 0, fmt.Errorf("%w: file length %d has no valid term length", ErrInvalidTermLength, logLength)
	}
	termLength := int32((logLength - meta) / PartitionCount)
	if err := CheckTermLength(termLength); err != nil {
		return 0, err
	}
	return termLength, nil
}

// NextPowerOfTwo returns the smallest power of two >= n. n must be
// positive.
func NextPowerOfTwo(n int64) int64 {
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len64(uint64(n))
}

// PositionBitsToShift returns the number of bits a position is shifted by
// to recover the term count, i.e. log2 of the term length.
func PositionBitsToShift(termLength int32) uint8 {
	return uint8(bits.TrailingZeros32(uint32(termLength)))
}

// ComputePosition returns the stream position for a term id and offset
// within it. Positions are strictly monotonic 64-bit coordinates.
func ComputePosition(termID, termOffset int32, positionBitsToShift uint8, initialTermID int32) int64 {
	termCount := int64(termID) - int64(initialTermID)
	return (termCount << positionBitsToShift) + int64(termOffset)
}

// IndexByPosition returns the partition index a position falls in.
func IndexByPosition(position int64, positionBitsToShift uint8) int {
	return int((position >> positionBitsToShift) % PartitionCount)
}

// NextPartitionIndex returns the partition after current in the ring.
func NextPartitionIndex(current int) int {
	return (current + 1) % PartitionCount
}

// PackTail packs a term id and a tail offset into a raw tail value.
func PackTail(termID, termOffset int32) int64 {
	return int64(termID)<<32 | int64(uint32(termOffset))
}

// TermIDFromRawTail extracts the term id from a raw tail value.
func TermIDFromRawTail(rawTail int64) int32 {
	return int32(rawTail >> 32)
}

// TermOffsetFromRawTail extracts the unclamped tail offset from a raw tail
// value. After a trip the offset exceeds the term length.
func TermOffsetFromRawTail(rawTail int64) int32 {
	return int32(rawTail & 0xFFFFFFFF)
}

// CappedTermOffset returns the tail offset clamped to the term length.
func CappedTermOffset(rawTail int64, termLength int32) int32 {
	offset := TermOffsetFromRawTail(rawTail)
	if offset > termLength {
		return termLength
	}
	return offset
}
