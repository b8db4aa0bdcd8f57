package state

import (
	"time"
)

// Phase is a room's position in the reveal cycle.
type Phase int

const (
	// PhaseWaiting: gathering players, secrets and ready flags.
	PhaseWaiting Phase = iota
	// PhaseCountdown: the reveal invariant held and a reveal is scheduled.
	PhaseCountdown
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseCountdown:
		return "countdown"
	default:
		return "unknown"
	}
}

// Machine tracks one room's reveal countdown. It holds the pending timer id
// so a second arming attempt during an in-flight countdown is rejected, and
// so room teardown can cancel the schedule outright.
//
// Machine is not self-synchronized: the owning room serializes every call
// under its own lock, including the fire callback's re-entry.
type Machine struct {
	sched     Scheduler
	countdown time.Duration
	fire      func()

	phase   Phase
	pending int64
}

// NewMachine creates a machine in PhaseWaiting. fire runs on the scheduler's
// goroutine once the countdown elapses; it must re-validate the world before
// revealing anything.
func NewMachine(sched Scheduler, countdown time.Duration, fire func()) *Machine {
	return &Machine{
		sched:     sched,
		countdown: countdown,
		fire:      fire,
		phase:     PhaseWaiting,
	}
}

// Arm schedules the countdown if the machine is idle. Returns false when a
// countdown is already in flight, so only the first satisfied readiness
// check schedules a reveal.
func (m *Machine) Arm() bool {
	if m.phase != PhaseWaiting {
		return false
	}
	m.phase = PhaseCountdown
	m.pending = m.sched.After(m.countdown, m.fire)
	return true
}

// Settle consumes an in-flight countdown on the fire path. Returns false if
// the countdown was disarmed before the timer ran.
func (m *Machine) Settle() bool {
	if m.phase != PhaseCountdown {
		return false
	}
	m.phase = PhaseWaiting
	m.pending = 0
	return true
}

// Disarm cancels a scheduled reveal, if any, and returns to waiting.
func (m *Machine) Disarm() {
	if m.phase != PhaseCountdown {
		return
	}
	m.sched.Cancel(m.pending)
	m.pending = 0
	m.phase = PhaseWaiting
}

func (m *Machine) Phase() Phase {
	return m.phase
}

// CountdownSeconds is the announced countdown length.
func (m *Machine) CountdownSeconds() int {
	return int(m.countdown / time.Second)
}
