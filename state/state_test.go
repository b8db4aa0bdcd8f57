package state

import (
	"testing"
	"time"
)

// fakeScheduler records scheduling calls without running anything.
type fakeScheduler struct {
	nextID    int64
	scheduled []int64
	cancelled []int64
}

func (f *fakeScheduler) After(delay time.Duration, callback func()) int64 {
	f.nextID++
	f.scheduled = append(f.scheduled, f.nextID)
	return f.nextID
}

func (f *fakeScheduler) Cancel(id int64) {
	f.cancelled = append(f.cancelled, id)
}

func TestMachine_ArmOnce(t *testing.T) {
	sched := &fakeScheduler{}
	m := NewMachine(sched, 3*time.Second, func() {})

	if m.Phase() != PhaseWaiting {
		t.Fatalf("New machine should start waiting, got %v", m.Phase())
	}

	if !m.Arm() {
		t.Fatal("First Arm should schedule")
	}
	if m.Phase() != PhaseCountdown {
		t.Errorf("Expected PhaseCountdown, got %v", m.Phase())
	}
	if m.Arm() {
		t.Fatal("Second Arm during an in-flight countdown must be rejected")
	}
	if len(sched.scheduled) != 1 {
		t.Errorf("Expected one scheduled task, got %d", len(sched.scheduled))
	}
}

func TestMachine_SettleConsumesCountdown(t *testing.T) {
	m := NewMachine(&fakeScheduler{}, 3*time.Second, func() {})

	if m.Settle() {
		t.Fatal("Settle without a countdown should report false")
	}

	m.Arm()
	if !m.Settle() {
		t.Fatal("Settle on an armed machine should report true")
	}
	if m.Phase() != PhaseWaiting {
		t.Errorf("Settle should return to waiting, got %v", m.Phase())
	}
	if m.Settle() {
		t.Fatal("A second Settle must find nothing to consume")
	}
}

func TestMachine_DisarmCancelsSchedule(t *testing.T) {
	sched := &fakeScheduler{}
	m := NewMachine(sched, 3*time.Second, func() {})

	m.Disarm() // no-op while waiting
	if len(sched.cancelled) != 0 {
		t.Fatal("Disarm while waiting should not cancel anything")
	}

	m.Arm()
	m.Disarm()

	if m.Phase() != PhaseWaiting {
		t.Errorf("Expected waiting after Disarm, got %v", m.Phase())
	}
	if len(sched.cancelled) != 1 || sched.cancelled[0] != sched.scheduled[0] {
		t.Errorf("Disarm should cancel the scheduled task, cancelled %v", sched.cancelled)
	}
	if m.Settle() {
		t.Fatal("Settle after Disarm should find nothing")
	}

	// The machine can be re-armed for the next round.
	if !m.Arm() {
		t.Fatal("Re-arming after Disarm should succeed")
	}
}

func TestMachine_CountdownSeconds(t *testing.T) {
	m := NewMachine(&fakeScheduler{}, 3*time.Second, func() {})
	if m.CountdownSeconds() != 3 {
		t.Errorf("Expected 3, got %d", m.CountdownSeconds())
	}
}
