package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/appendlog/pkg/log"
)

// ShutdownTimeout is the maximum time to wait for the poller and cleaner
// to exit before the instance is abandoned.
const ShutdownTimeout = 5 * time.Second

// Lifecycle errors, checked with errors.Is by the public facade.
var (
	// ErrAlreadyRunning is returned when a start is attempted on a
	// running instance.
	ErrAlreadyRunning = errors.New("appendlog: already running")

	// ErrNotRunning is returned when a stop is attempted on a stopped
	// instance.
	ErrNotRunning = errors.New("appendlog: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("appendlog: shutdown timeout")

	// ErrCleanerCrashed is returned when a start is attempted after the
	// cleaner failed. A failed sweep may have left a partition dirty,
	// so the instance must never run again.
	ErrCleanerCrashed = errors.New("appendlog: cleaner crashed, log compromised")
)

// State represents the run state of an append log's workers.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping

	// StateCrashed means the workers were abandoned (shutdown timeout).
	// The mapped file is intact, so the instance may be started again.
	StateCrashed

	// StateCleanerCrashed means the cleaner failed mid-sweep. A term may
	// be partially zeroed, and reusing it would hand torn frames to the
	// reader, so this state is terminal.
	StateCleanerCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	case StateCleanerCrashed:
		return "CleanerCrashed"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when the lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle tracks the run state of the append log's two workers, the
// poller and the cleaner. Rather than exposing free-form transitions, its
// methods are named for the facade operations they serve: BeginStart/
// Running bracket startup, BeginStop/EndStop bracket shutdown, and
// CleanerCrashed records the one failure that poisons the log. Worker
// goroutines are tracked here too, so EndStop knows when both have
// exited.
type Lifecycle struct {
	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	workers sync.WaitGroup
	logger  log.Logger
	emitter EventEmitter
}

// NewLifecycle creates a lifecycle manager in StateStopped.
func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:   StateStopped,
		logger:  logger,
		emitter: emitter,
	}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// BeginStart claims the right to start workers, storing cancel for
// BeginStop. Only a stopped or abandoned instance can start; a cleaner
// crash is terminal.
func (l *Lifecycle) BeginStart(cancel context.CancelFunc) error {
	l.mu.Lock()
	switch l.state {
	case StateStopped, StateCrashed:
	case StateCleanerCrashed:
		l.mu.Unlock()
		return ErrCleanerCrashed
	default:
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	previous := l.state
	l.state = StateStarting
	l.cancel = cancel
	l.mu.Unlock()

	l.announce(previous, StateStarting, "start requested")
	return nil
}

// Go runs fn as a tracked worker goroutine. EndStop waits for every
// worker started this way.
func (l *Lifecycle) Go(fn func()) {
	l.workers.Add(1)
	go func() {
		defer l.workers.Done()
		fn()
	}()
}

// Running marks startup complete. It reports false if a stop or crash
// won the race, in which case the caller should exit instead of polling.
func (l *Lifecycle) Running() bool {
	l.mu.Lock()
	if l.state != StateStarting {
		l.mu.Unlock()
		return false
	}
	l.state = StateRunning
	l.mu.Unlock()

	l.announce(StateStarting, StateRunning, "poller running")
	return true
}

// BeginStop cancels the workers' context. The caller then drains them
// with EndStop.
func (l *Lifecycle) BeginStop() error {
	l.mu.Lock()
	switch l.state {
	case StateStarting, StateRunning:
	default:
		l.mu.Unlock()
		return ErrNotRunning
	}
	previous := l.state
	l.state = StateStopping
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	l.announce(previous, StateStopping, "stop requested")
	if cancel != nil {
		cancel()
	}
	return nil
}

// EndStop waits up to timeout for the workers to exit. On timeout the
// workers are abandoned, the instance is marked crashed, and
// ErrShutdownTimeout is returned.
func (l *Lifecycle) EndStop(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.settle(StateStopped, "graceful shutdown")
		return nil
	case <-time.After(timeout):
		l.logger.Warn("workers did not exit, abandoning",
			log.Duration("timeout", timeout),
		)
		l.settle(StateCrashed, "shutdown timeout")
		return ErrShutdownTimeout
	}
}

// CleanerCrashed records a cleaner failure. The verdict is terminal and
// outranks any stop in flight: the failed sweep may have left a
// partition half-zeroed. It is emitted before the process is halted so
// an event handler observes the cause.
func (l *Lifecycle) CleanerCrashed(err error) {
	l.mu.Lock()
	previous := l.state
	l.state = StateCleanerCrashed
	l.mu.Unlock()

	l.announce(previous, StateCleanerCrashed, err.Error())
}

// settle finalizes a shutdown, unless the cleaner crashed in the
// meantime; that verdict sticks.
func (l *Lifecycle) settle(next State, reason string) {
	l.mu.Lock()
	if l.state == StateCleanerCrashed {
		l.mu.Unlock()
		return
	}
	previous := l.state
	l.state = next
	l.mu.Unlock()

	l.announce(previous, next, reason)
}

// announce logs and emits a transition outside the lock.
func (l *Lifecycle) announce(previous, current State, reason string) {
	if l.emitter != nil {
		l.emitter.OnStateChange(previous, current, reason)
	}
	l.logger.Info("lifecycle",
		log.String("from", previous.String()),
		log.String("to", current.String()),
		log.String("reason", reason),
	)
}
