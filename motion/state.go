package motion

import "time"

// DefaultGracePeriod is the trailing window after the last detected-motion
// frame during which the machine still reports Active. It absorbs single-frame
// dropouts without flapping the reported state.
const DefaultGracePeriod = 500 * time.Millisecond

// State is the motion lifecycle state.
type State int

const (
	// StateInactive means no motion is currently being reported.
	StateInactive State = iota
	// StateActive means motion started and has not yet stopped.
	StateActive
)

// String returns the state name.
func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "inactive"
}

// EventKind discriminates the lifecycle events emitted per cycle.
type EventKind int

const (
	// EventNone: no transition this cycle.
	EventNone EventKind = iota
	// EventStarted: transition from inactive to active.
	EventStarted
	// EventOngoing: motion detected while already active.
	EventOngoing
	// EventStopped: transition from active to inactive after the grace period.
	EventStopped
)

// Event is one motion lifecycle event.
type Event struct {
	Kind EventKind
	// At is the cycle timestamp the event was emitted for.
	At time.Time
	// Duration is the elapsed time since motion started; set on EventStopped.
	Duration time.Duration
}

// StateMachine converts the noisy per-frame "any surviving blob?" boolean into
// discrete lifecycle events using a trailing grace window.
//
// All mutation happens on the single frame-processing path; the machine is not
// safe for concurrent use and does not need to be.
type StateMachine struct {
	state           State
	grace           time.Duration
	motionStartedAt time.Time
	lastDetectedAt  time.Time
}

// NewStateMachine returns a machine in the inactive state. A non-positive
// grace period falls back to the reference default.
func NewStateMachine(grace time.Duration) *StateMachine {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &StateMachine{grace: grace}
}

// Update advances the machine for one cycle.
//
// A detected cycle while inactive transitions to active and emits
// EventStarted; every detected cycle refreshes the last-detection timestamp.
// An undetected cycle while active emits EventStopped only once the gap since
// the last detection exceeds the grace period, carrying the total duration
// since motion started.
func (sm *StateMachine) Update(detected bool, now time.Time) Event {
	if detected {
		ev := Event{Kind: EventOngoing, At: now}
		if sm.state == StateInactive {
			sm.state = StateActive
			sm.motionStartedAt = now
			ev.Kind = EventStarted
		}
		sm.lastDetectedAt = now
		return ev
	}

	if sm.state == StateActive && now.Sub(sm.lastDetectedAt) > sm.grace {
		sm.state = StateInactive
		duration := now.Sub(sm.motionStartedAt)
		sm.motionStartedAt = time.Time{}
		sm.lastDetectedAt = time.Time{}
		return Event{Kind: EventStopped, At: now, Duration: duration}
	}
	return Event{Kind: EventNone, At: now}
}

// State returns the current lifecycle state.
func (sm *StateMachine) State() State {
	return sm.state
}

// StartedAt returns when the current motion period began; zero while inactive.
func (sm *StateMachine) StartedAt() time.Time {
	return sm.motionStartedAt
}

// Reset returns the machine to inactive with all timestamps cleared. Called
// whenever a capture session (re)starts.
func (sm *StateMachine) Reset() {
	sm.state = StateInactive
	sm.motionStartedAt = time.Time{}
	sm.lastDetectedAt = time.Time{}
}
