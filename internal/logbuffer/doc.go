// Package logbuffer implements the shared-memory substrate of the append
// log: a memory-mapped file carved into three rotating term buffers, each
// written by any number of producers and read by a single consumer.
//
// # Layout
//
// The mapped file holds three term buffers, followed by three term metadata
// blocks, followed by one log metadata block. Producers reserve frame slots
// in the active term with a CAS on the slot's length word, fill the frame,
// and publish it by storing the positive frame length with release ordering.
// The consumer scans committed frames in order, pairing an acquire load of
// the length word with the producer's release store.
//
// # Components
//
//   - [Buffer]: atomic accessors over a mapped byte region
//   - [LogBuffers]: file mapping and partitioning
//   - [TermAppender]: multi-producer claim/commit within one term
//   - [ReadTerm]: single-consumer scan of committed frames
//   - [ScanForGap]: diagnostic scanner for uncommitted regions
//   - [RotateLog]: active-partition advance on term trip
//
// All integers in the file are little-endian; the package requires a
// little-endian host.
package logbuffer
