package appendlog

import "github.com/bft-labs/appendlog/internal/app"

// State represents the lifecycle state of the poller.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
	StateCleanerCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return convertState(s).String()
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives lifecycle events from an AppendLog.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter
// interface.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: fromAppState(previous),
		Current:  fromAppState(current),
		Reason:   reason,
	})
}

func convertState(s State) app.State {
	switch s {
	case StateStopped:
		return app.StateStopped
	case StateStarting:
		return app.StateStarting
	case StateRunning:
		return app.StateRunning
	case StateStopping:
		return app.StateStopping
	case StateCrashed:
		return app.StateCrashed
	case StateCleanerCrashed:
		return app.StateCleanerCrashed
	default:
		return app.StateStopped
	}
}

func fromAppState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	case app.StateCleanerCrashed:
		return StateCleanerCrashed
	default:
		return StateStopped
	}
}
