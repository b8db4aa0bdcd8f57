package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManager_After_Fires(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired atomic.Int32
	m.After(10*time.Millisecond, func() {
		fired.Add(1)
	})

	time.Sleep(300 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("Expected one-shot to fire once, fired %d times", got)
	}
}

func TestManager_Cancel_PreventsFire(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired atomic.Int32
	id := m.After(100*time.Millisecond, func() {
		fired.Add(1)
	})
	m.Cancel(id)

	time.Sleep(300 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatal("Cancelled task fired anyway")
	}
}

func TestManager_Cancel_UnknownID(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	// Must not panic or disturb other tasks.
	m.Cancel(9999)

	var fired atomic.Int32
	m.After(10*time.Millisecond, func() { fired.Add(1) })
	time.Sleep(300 * time.Millisecond)
	if fired.Load() != 1 {
		t.Fatal("Unrelated cancel disturbed a scheduled task")
	}
}

func TestManager_Every_Rearms(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired atomic.Int32
	m.Every(60*time.Millisecond, func() {
		fired.Add(1)
	})

	time.Sleep(500 * time.Millisecond)
	if got := fired.Load(); got < 2 {
		t.Fatalf("Expected interval task to fire repeatedly, fired %d times", got)
	}
}

func TestManager_Stop_HaltsPending(t *testing.T) {
	m := NewManager()

	var fired atomic.Int32
	m.After(150*time.Millisecond, func() { fired.Add(1) })
	m.Stop()

	time.Sleep(400 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatal("Task fired after Stop")
	}
}
