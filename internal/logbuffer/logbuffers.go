package logbuffer

import (
	"fmt"
	"os"
)

// LogBuffers owns the mapped log file and its partitioned views: three
// term buffers, three term metadata blocks, and one log metadata block.
// The mapping outlives all appenders and readers constructed over it;
// Close releases it.
type LogBuffers struct {
	file       *os.File
	mem        []byte
	terms      [PartitionCount]*Buffer
	metas      [PartitionCount]*Buffer
	logMeta    *Buffer
	termLength int32
	fresh      bool
}

// Open maps the log file at path, creating and initializing it if it does
// not exist. An existing file must have been created with the same term
// length; the file size records it implicitly.
func Open(path string, termLength int32) (*LogBuffers, error) {
	return open(path, termLength, 0)
}

func open(path string, termLength, initialTermID int32) (*LogBuffers, error) {
	if err := CheckTermLength(termLength); err != nil {
		return nil, err
	}
	logLength := LogLength(termLength)
	if logLength >= maxMappedLength {
		return nil, fmt.Errorf("%w: log length %d exceeds mappable limit %d",
			ErrInvalidTermLength, logLength, maxMappedLength)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file %s: %w", path, err)
	}

	fresh := info.Size() == 0
	switch {
	case fresh:
		if err := file.Truncate(logLength); err != nil {
			file.Close()
			os.Remove(path)
			return nil, fmt.Errorf("resize log file to %d: %w", logLength, err)
		}
	case info.Size() != logLength:
		file.Close()
		return nil, fmt.Errorf("%w: file size %d does not match term length %d (want %d)",
			ErrInvalidTermLength, info.Size(), termLength, logLength)
	}

	mem, err := mapFile(file, int(logLength))
	if err != nil {
		file.Close()
		if fresh {
			os.Remove(path)
		}
		return nil, fmt.Errorf("map log file %s: %w", path, err)
	}

	lb := &LogBuffers{file: file, mem: mem, termLength: termLength, fresh: fresh}
	if err := lb.slice(); err != nil {
		unmapFile(mem)
		file.Close()
		return nil, err
	}
	if fresh {
		lb.initialize(initialTermID)
	}
	return lb, nil
}

// slice carves the mapping into the partition and metadata views.
func (lb *LogBuffers) slice() error {
	offset := int64(0)
	for i := 0; i < PartitionCount; i++ {
		term, err := NewBuffer(lb.mem[offset : offset+int64(lb.termLength)])
		if err != nil {
			return err
		}
		lb.terms[i] = term
		offset += int64(lb.termLength)
	}
	metaLen := int64(TermMetaDataLength())
	for i := 0; i < PartitionCount; i++ {
		meta, err := NewBuffer(lb.mem[offset : offset+metaLen])
		if err != nil {
			return err
		}
		lb.metas[i] = meta
		offset += metaLen
	}
	logMeta, err := NewBuffer(lb.mem[offset : offset+int64(LogMetaDataLength())])
	if err != nil {
		return err
	}
	lb.logMeta = logMeta
	return nil
}

// initialize records the creation-time metadata: initial term id, partition
// zero active with the initial term id in its tail, the remaining
// partitions clean.
func (lb *LogBuffers) initialize(initialTermID int32) {
	putInitialTermID(lb.logMeta, initialTermID)
	PutRawTail(lb.metas[0], PackTail(initialTermID, 0))
	PutStatusOrdered(lb.metas[0], PartitionInUse)
	for i := 1; i < PartitionCount; i++ {
		PutStatusOrdered(lb.metas[i], PartitionClean)
	}
	PutActivePartitionIndexOrdered(lb.logMeta, 0)
}

// TermLength returns the length of each term buffer in bytes.
func (lb *LogBuffers) TermLength() int32 {
	return lb.termLength
}

// TermBuffer returns the term buffer view for partition i.
func (lb *LogBuffers) TermBuffer(i int) *Buffer {
	return lb.terms[i]
}

// MetaDataBuffer returns the term metadata view for partition i.
func (lb *LogBuffers) MetaDataBuffer(i int) *Buffer {
	return lb.metas[i]
}

// LogMetaData returns the log metadata view.
func (lb *LogBuffers) LogMetaData() *Buffer {
	return lb.logMeta
}

// Fresh reports whether Open created the file rather than mapping an
// existing one.
func (lb *LogBuffers) Fresh() bool {
	return lb.fresh
}

// CleanPartition zero-fills partition i's term buffer and marks it clean
// with release ordering.
func (lb *LogBuffers) CleanPartition(i int) {
	lb.terms[i].SetMemory(0, lb.termLength, 0)
	PutStatusOrdered(lb.metas[i], PartitionClean)
}

// Close unmaps the file and closes it. The views must not be used after
// Close returns.
func (lb *LogBuffers) Close() error {
	var firstErr error
	if lb.mem != nil {
		if err := unmapFile(lb.mem); err != nil {
			firstErr = err
		}
		lb.mem = nil
	}
	if lb.file != nil {
		if err := lb.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		lb.file = nil
	}
	return firstErr
}
