package speech

import "github.com/aretw0/broilr/pkg/domain"

// ErrUnsupported is returned by Arm when the recognizer cannot capture on this runtime.
// Typed input keeps working.
var ErrUnsupported = domain.ErrSpeechUnsupported

// State is the capture lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateCapturing
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateCooldown:
		return "cooldown"
	}
	return "unknown"
}

// Event is what moves the state machine.
type Event string

const (
	EventStarted  Event = "started"
	EventResult   Event = "result"
	EventEnded    Event = "ended"
	EventDisarmed Event = "disarmed"
)

// Transition describes one state change, reported to observers.
type Transition struct {
	From  State
	To    State
	Event Event
}
