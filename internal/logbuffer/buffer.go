package logbuffer

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Buffer wraps a region of the mapped file and provides plain and atomic
// accessors at byte offsets. Atomic accessors require the offset to be
// naturally aligned for the access width; the region itself is 8-byte
// aligned, which [NewBuffer] verifies.
type Buffer struct {
	data []byte
}

// NewBuffer returns a Buffer over data. It returns an error if the region
// is not 8-byte aligned, since atomic 64-bit access would fault.
func NewBuffer(data []byte) (*Buffer, error) {
	if len(data) > 0 && uintptr(unsafe.Pointer(&data[0]))%8 != 0 {
		return nil, fmt.Errorf("buffer base address %p is not 8-byte aligned", &data[0])
	}
	return &Buffer{data: data}, nil
}

// Capacity returns the length of the region in bytes.
func (b *Buffer) Capacity() int32 {
	return int32(len(b.data))
}

// Bytes returns the region [offset, offset+length) as a slice sharing the
// underlying mapping.
func (b *Buffer) Bytes(offset, length int32) []byte {
	return b.data[offset : offset+length : offset+length]
}

func (b *Buffer) ptr(offset int32) unsafe.Pointer {
	return unsafe.Pointer(&b.data[offset])
}

// GetInt32 reads a little-endian int32 without ordering.
func (b *Buffer) GetInt32(offset int32) int32 {
	return int32(binary.LittleEndian.Uint32(b.data[offset:]))
}

// PutInt32 writes a little-endian int32 without ordering.
func (b *Buffer) PutInt32(offset, value int32) {
	binary.LittleEndian.PutUint32(b.data[offset:], uint32(value))
}

// GetInt32Volatile reads an int32 with acquire ordering.
func (b *Buffer) GetInt32Volatile(offset int32) int32 {
	return atomic.LoadInt32((*int32)(b.ptr(offset)))
}

// PutInt32Ordered writes an int32 with release ordering.
func (b *Buffer) PutInt32Ordered(offset, value int32) {
	atomic.StoreInt32((*int32)(b.ptr(offset)), value)
}

// CompareAndSetInt32 atomically replaces the int32 at offset if it equals
// expected. Reports whether the swap happened.
func (b *Buffer) CompareAndSetInt32(offset, expected, updated int32) bool {
	return atomic.CompareAndSwapInt32((*int32)(b.ptr(offset)), expected, updated)
}

// GetInt64 reads a little-endian int64 without ordering.
func (b *Buffer) GetInt64(offset int32) int64 {
	return int64(binary.LittleEndian.Uint64(b.data[offset:]))
}

// PutInt64 writes a little-endian int64 without ordering.
func (b *Buffer) PutInt64(offset int32, value int64) {
	binary.LittleEndian.PutUint64(b.data[offset:], uint64(value))
}

// GetInt64Volatile reads an int64 with acquire ordering.
func (b *Buffer) GetInt64Volatile(offset int32) int64 {
	return atomic.LoadInt64((*int64)(b.ptr(offset)))
}

// PutInt64Ordered writes an int64 with release ordering.
func (b *Buffer) PutInt64Ordered(offset int32, value int64) {
	atomic.StoreInt64((*int64)(b.ptr(offset)), value)
}

// CompareAndSetInt64 atomically replaces the int64 at offset if it equals
// expected. Reports whether the swap happened.
func (b *Buffer) CompareAndSetInt64(offset int32, expected, updated int64) bool {
	return atomic.CompareAndSwapInt64((*int64)(b.ptr(offset)), expected, updated)
}

// GetAndAddInt64 atomically adds delta to the int64 at offset and returns
// the previous value.
func (b *Buffer) GetAndAddInt64(offset int32, delta int64) int64 {
	return atomic.AddInt64((*int64)(b.ptr(offset)), delta) - delta
}

// PutBytes copies src into the region starting at offset.
func (b *Buffer) PutBytes(offset int32, src []byte) {
	copy(b.data[offset:], src)
}

// GetBytes copies length bytes starting at offset into a new slice.
func (b *Buffer) GetBytes(offset, length int32) []byte {
	out := make([]byte, length)
	copy(out, b.data[offset:])
	return out
}

// SetMemory fills the region [offset, offset+length) with value.
func (b *Buffer) SetMemory(offset, length int32, value byte) {
	region := b.data[offset : offset+length]
	for i := range region {
		region[i] = value
	}
}
