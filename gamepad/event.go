package gamepad

import "time"

// SessionState is the lifecycle state of a device session.
type SessionState uint8

const (
	SessionConnecting SessionState = iota
	SessionActive
	SessionDegraded
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionConnecting:
		return "connecting"
	case SessionActive:
		return "active"
	case SessionDegraded:
		return "degraded"
	case SessionClosed:
		return "closed"
	}
	return "unknown"
}

// EventKind discriminates the payload of an Event.
type EventKind uint8

const (
	// EventState carries a canonical controller state snapshot.
	EventState EventKind = iota
	// EventLifecycle signals a session state transition, so consumers can
	// tell "controller went neutral" from "device disconnected".
	EventLifecycle
	// EventDropped marks a gap: the subscriber's queue overflowed and
	// Dropped events were discarded before this point.
	EventDropped
)

func (k EventKind) String() string {
	switch k {
	case EventState:
		return "state"
	case EventLifecycle:
		return "lifecycle"
	case EventDropped:
		return "dropped"
	}
	return "unknown"
}

// Event is the unit published on the state bus.
//
// State events carry a per-device strictly increasing sequence number, so a
// consumer can detect drops from discontinuities. Lifecycle events carry the
// new session state and a short reason. Dropped markers are synthesized per
// subscriber by the bus and carry only a count.
type Event struct {
	Kind   EventKind
	Device Identity
	Time   time.Time

	Seq   uint64
	State State

	Session SessionState
	Reason  string

	Dropped uint64
}

// OutputCommand is a consumer request routed to one device's output path.
type OutputCommand struct {
	// Rumble motor strengths, 0 (off) to 255 (full).
	LeftMotor  uint8
	RightMotor uint8
}
