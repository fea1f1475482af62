// Package appendlog provides a multi-producer, single-consumer append log
// over a memory-mapped file, for low-latency messaging between processes
// on one host.
//
// Producers claim a byte range with [AppendLog.Claim], fill it, and
// publish it with [BufferClaim.Commit]. A single poller delivers committed
// frames in order to the handler registered with [AppendLog.OnAppend].
// The log file is partitioned into three rotating terms; a background
// worker zero-fills retired terms before they are reused.
//
// # Usage
//
//	alog, err := appendlog.Open("/dev/shm/orders.log", 16<<20)
//	if err != nil { ... }
//	defer alog.Close()
//
//	alog.OnAppend(func(payload []byte, _ appendlog.FrameInfo) {
//		handle(payload) // view is valid only during the call
//	})
//	if err := alog.StartPolling(ctx); err != nil { ... }
//
//	claim, err := alog.Claim(int32(len(msg)))
//	if err != nil { ... }
//	copy(claim.Buffer(), msg)
//	claim.Commit()
//
// Any number of goroutines or cooperating processes may produce; exactly
// one consumer owns the subscriber position.
package appendlog
