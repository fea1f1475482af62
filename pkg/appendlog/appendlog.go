package appendlog

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/appendlog/internal/app"
	"github.com/bft-labs/appendlog/internal/logbuffer"
	"github.com/bft-labs/appendlog/pkg/log"
)

// BufferClaim is a reserved, not-yet-committed byte range in the log. The
// payload view returned by Buffer aliases shared memory and is invalidated
// by Commit or Abort.
type BufferClaim = logbuffer.BufferClaim

// FrameInfo describes a delivered frame's header fields.
type FrameInfo = logbuffer.FrameInfo

// Handler receives one committed frame's payload. The view is valid only
// for the duration of the call.
type Handler func(payload []byte, info FrameInfo)

// ErrorHandler receives errors caught inside the poll loop.
type ErrorHandler func(err error)

// AppendLog binds the log buffers, the per-partition appenders, the
// poller, and the background cleaner into a Claim/Commit/OnAppend API.
// Claim and Commit are safe for any number of goroutines; exactly one
// consumer owns the subscriber position.
type AppendLog struct {
	cfg  Config
	opts options

	logger    log.Logger
	lb        *logbuffer.LogBuffers
	appenders [logbuffer.PartitionCount]*logbuffer.TermAppender
	header    *logbuffer.HeaderWriter
	cleaner   *cleaner
	lifecycle *app.Lifecycle

	positionBits  uint8
	termMask      int64
	initialTermID int32
	sessionID     int64

	subscriberPos atomic.Int64
	closed        atomic.Bool

	mu       sync.RWMutex
	onAppend Handler
	onError  ErrorHandler
}

// New creates an append log over the file at cfg.Path, creating and
// initializing the file if it does not exist. The instance starts with no
// poller running; call StartPolling to begin consuming.
func New(cfg Config, opts ...Option) (*AppendLog, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	lb, err := logbuffer.Open(cfg.Path, cfg.TermLength)
	if err != nil {
		return nil, err
	}

	sessionID := int64(os.Getpid())<<32 | int64(uint32(time.Now().Unix()))
	logMeta := lb.LogMetaData()
	if lb.Fresh() {
		logbuffer.StoreDefaultFrameHeader(logMeta, foldSessionID(sessionID), cfg.StreamID)
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	l := &AppendLog{
		cfg:           cfg,
		opts:          o,
		logger:        o.logger,
		lb:            lb,
		header:        logbuffer.NewHeaderWriter(logMeta),
		lifecycle:     app.NewLifecycle(o.logger, emitter),
		positionBits:  logbuffer.PositionBitsToShift(cfg.TermLength),
		termMask:      int64(cfg.TermLength) - 1,
		initialTermID: logbuffer.InitialTermID(logMeta),
		sessionID:     sessionID,
	}
	for i := 0; i < logbuffer.PartitionCount; i++ {
		l.appenders[i] = logbuffer.NewTermAppender(
			lb.TermBuffer(i), lb.MetaDataBuffer(i), cfg.TermLength)
	}
	l.cleaner = newCleaner(lb, o.logger, func(err error) {
		l.lifecycle.CleanerCrashed(err)
	})
	return l, nil
}

// Open creates an append log over path sized to hold bufferSizeBytes per
// term, rounded up to the next valid power of two.
func Open(path string, bufferSizeBytes int64, opts ...Option) (*AppendLog, error) {
	return New(Config{Path: path, TermLength: TermLengthForSize(bufferSizeBytes)}, opts...)
}

// foldSessionID reduces the 64-bit session id to the 32-bit header field.
func foldSessionID(sessionID int64) int32 {
	return int32(sessionID ^ (sessionID >> 32))
}

// SessionID returns the 64-bit session id of this instance: the process
// id in the high half, the start epoch seconds in the low half.
func (l *AppendLog) SessionID() int64 {
	return l.sessionID
}

// Claim reserves a byte range of exactly length in the active term. The
// caller fills claim.Buffer() and publishes with Commit, or discards with
// Abort. Claim blocks with bounded spinning under contention and rotates
// terms internally; it does not honor cancellation.
func (l *AppendLog) Claim(length int32) (BufferClaim, error) {
	var claim BufferClaim
	if l.closed.Load() {
		return claim, ErrClosed
	}
	if length <= 0 {
		return claim, fmt.Errorf("%w: claim length %d", ErrInvalidFrameLength, length)
	}
	aligned := logbuffer.AlignUp(length+logbuffer.FrameHeaderLength, logbuffer.FrameAlignment)
	if aligned > l.cfg.TermLength {
		return claim, fmt.Errorf("%w: frame of %d exceeds term length %d",
			ErrInvalidFrameLength, aligned, l.cfg.TermLength)
	}

	for {
		index := logbuffer.ActivePartitionIndex(l.lb.LogMetaData())
		result := l.appenders[index].Claim(l.header, length, l.cfg.SpinLimitBeforeUnblock, &claim)
		offset := logbuffer.ResultOffset(result)

		switch {
		case offset > 0:
			return claim, nil
		case offset == logbuffer.ResultTripped:
			if logbuffer.RotateLog(l.lb, index, logbuffer.ResultTermID(result)) {
				l.cleaner.signal()
			}
		default:
			return claim, fmt.Errorf("%w: claim of %d failed", ErrInvalidFrameLength, length)
		}
	}
}

// OnAppend registers the handler invoked by the poller for each committed
// data frame. A single handler slot is held; registering replaces any
// previous handler.
func (l *AppendLog) OnAppend(handler Handler) {
	l.mu.Lock()
	l.onAppend = handler
	l.mu.Unlock()
}

// OnError registers the handler invoked for errors caught inside the poll
// loop. The loop continues after delivery.
func (l *AppendLog) OnError(handler ErrorHandler) {
	l.mu.Lock()
	l.onError = handler
	l.mu.Unlock()
}

// StartPolling starts the poller and the background cleaner. Returns
// ErrAlreadyRunning if already started, ErrCleanerCrashed if a previous
// cleaner failure poisoned the instance. The provided context bounds the
// lifetime of both workers.
func (l *AppendLog) StartPolling(ctx context.Context) error {
	if l.closed.Load() {
		return ErrClosed
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := l.lifecycle.BeginStart(cancel); err != nil {
		cancel()
		return err
	}

	l.lifecycle.Go(func() {
		l.cleaner.run(runCtx)
	})
	l.lifecycle.Go(func() {
		if !l.lifecycle.Running() {
			return
		}
		l.pollLoop(runCtx)
	})

	return nil
}

// Stop gracefully shuts down the poller and cleaner. Returns nil on
// graceful shutdown, ErrShutdownTimeout if the workers had to be
// abandoned.
func (l *AppendLog) Stop() error {
	if err := l.lifecycle.BeginStop(); err != nil {
		return err
	}
	return l.lifecycle.EndStop(app.ShutdownTimeout)
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (l *AppendLog) Status() State {
	return fromAppState(l.lifecycle.State())
}

// Close stops the workers if running and releases the mapping. The
// instance must not be used afterwards.
func (l *AppendLog) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	if err := l.Stop(); err != nil && err != ErrNotRunning {
		l.logger.Warn("stop during close", log.Err(err))
	}
	return l.lb.Close()
}

// Position returns the producer position: the stream coordinate of the
// active term's tail.
func (l *AppendLog) Position() int64 {
	index := logbuffer.ActivePartitionIndex(l.lb.LogMetaData())
	rawTail := l.appenders[index].RawTail()
	return logbuffer.ComputePosition(
		logbuffer.TermIDFromRawTail(rawTail),
		logbuffer.CappedTermOffset(rawTail, l.cfg.TermLength),
		l.positionBits,
		l.initialTermID,
	)
}

// SubscriberPosition returns the consumer position: the stream coordinate
// up to which the poller has delivered frames.
func (l *AppendLog) SubscriberPosition() int64 {
	return l.subscriberPos.Load()
}

// pollLoop runs the consumer until the context is canceled. Errors from
// the handler never escape the loop: they are logged, surfaced through
// OnError, and polling resumes.
func (l *AppendLog) pollLoop(ctx context.Context) {
	idle := app.NewIdleStrategy(0, 0, l.cfg.IdleMinSleep, l.cfg.IdleMaxSleep)
	for ctx.Err() == nil {
		fragments := l.safePoll()
		if fragments == 0 {
			idle.Idle()
		} else {
			idle.Reset()
		}
	}
}

// safePoll runs one poll iteration, containing handler panics.
func (l *AppendLog) safePoll() (fragments int) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("poll iteration: %v", r)
			l.logger.Error("poller recovered", log.Err(err))
			l.mu.RLock()
			handler := l.onError
			l.mu.RUnlock()
			if handler != nil {
				handler(err)
			}
		}
	}()
	return l.poll()
}

// poll scans the subscriber's current term once and advances the
// subscriber position past the consumed frames.
func (l *AppendLog) poll() int {
	l.mu.RLock()
	handler := l.onAppend
	l.mu.RUnlock()

	position := l.subscriberPos.Load()
	index := logbuffer.IndexByPosition(position, l.positionBits)
	termOffset := int32(position & l.termMask)
	term := l.lb.TermBuffer(index)

	dispatch := func(payload []byte, info FrameInfo) {
		if handler != nil {
			handler(payload, info)
		}
	}
	newOffset, fragments := logbuffer.ReadTerm(term, termOffset, dispatch, l.cfg.PollFragmentLimit)
	if newOffset != termOffset {
		l.subscriberPos.Store(position + int64(newOffset-termOffset))
	}
	return fragments
}
