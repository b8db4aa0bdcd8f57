package room

import (
	"strings"
	"testing"
	"time"
)

func newTestRegistry(opts Options) (*Registry, *MockBroadcaster) {
	if opts.Countdown == 0 {
		opts.Countdown = 3 * time.Second
	}
	if opts.HistoryLimit == 0 {
		opts.HistoryLimit = 10
	}
	return NewRegistry(newFakeScheduler(), opts), &MockBroadcaster{}
}

func TestRegistry_CreateRoom_CodeFormat(t *testing.T) {
	reg, b := newTestRegistry(Options{})

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		r, snapshot := reg.CreateRoom(newTestSession(snapshotID(i)), "Host", b)

		if len(r.Code) != codeLength {
			t.Fatalf("Code %q has length %d, want %d", r.Code, len(r.Code), codeLength)
		}
		for _, c := range r.Code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("Code %q contains %q, outside the alphabet", r.Code, c)
			}
		}
		if seen[r.Code] {
			t.Fatalf("Code %q issued twice among live rooms", r.Code)
		}
		seen[r.Code] = true

		if snapshot.RoomCode != r.Code || len(snapshot.Players) != 1 {
			t.Fatalf("Unexpected creation snapshot: %+v", snapshot)
		}
	}
}

func snapshotID(i int) string {
	return "conn-" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26))
}

func TestRegistry_JoinRoom_Errors(t *testing.T) {
	reg, b := newTestRegistry(Options{})

	if _, err := reg.JoinRoom("ZZZZ", newTestSession("x"), "X"); err != ErrRoomNotFound {
		t.Fatalf("Expected ErrRoomNotFound, got %v", err)
	}

	r, _ := reg.CreateRoom(newTestSession("host"), "Host", b)
	if _, err := reg.JoinRoom(r.Code, newTestSession("guest"), "Guest"); err != nil {
		t.Fatalf("First join failed: %v", err)
	}
	if _, err := reg.JoinRoom(r.Code, newTestSession("third"), "Third"); err != ErrRoomFull {
		t.Fatalf("Expected ErrRoomFull, got %v", err)
	}
}

func TestRegistry_JoinRoom_CaseInsensitive(t *testing.T) {
	reg, b := newTestRegistry(Options{})
	r, _ := reg.CreateRoom(newTestSession("host"), "Host", b)

	lower := strings.ToLower(r.Code)
	if _, err := reg.JoinRoom(lower, newTestSession("guest"), "Guest"); err != nil {
		t.Fatalf("Join with lower-case code failed: %v", err)
	}
}

func TestRegistry_LastLeaveDeletesRoom(t *testing.T) {
	reg, b := newTestRegistry(Options{})
	host := newTestSession("host")
	r, _ := reg.CreateRoom(host, "Host", b)

	survivor, wasMember := reg.Leave(r.Code, "host")
	if !wasMember {
		t.Fatal("Host should have been a member")
	}
	if survivor != nil {
		t.Fatal("Room should not survive its last leave")
	}
	if _, ok := reg.Get(r.Code); ok {
		t.Fatal("Room still retrievable after last leave")
	}
	if host.RoomCode() != "" {
		t.Errorf("Leave should clear the session binding, got %q", host.RoomCode())
	}
}

func TestRegistry_Leave_KeepsRoomWithPeer(t *testing.T) {
	reg, b := newTestRegistry(Options{})
	r, _ := reg.CreateRoom(newTestSession("host"), "Host", b)
	reg.JoinRoom(r.Code, newTestSession("guest"), "Guest")

	survivor, wasMember := reg.Leave(r.Code, "guest")
	if !wasMember || survivor == nil {
		t.Fatal("Room with a remaining member must survive")
	}
	if survivor.MemberCount() != 1 {
		t.Errorf("Expected 1 remaining member, got %d", survivor.MemberCount())
	}
}

func TestRegistry_Remove_Idempotent(t *testing.T) {
	reg, b := newTestRegistry(Options{})
	r, _ := reg.CreateRoom(newTestSession("host"), "Host", b)

	reg.Remove(r.Code)
	reg.Remove(r.Code)

	if reg.Count() != 0 {
		t.Errorf("Expected 0 rooms, got %d", reg.Count())
	}
}

func TestRegistry_LeaveAll_SweepsEveryRoom(t *testing.T) {
	reg, b := newTestRegistry(Options{})
	r, _ := reg.CreateRoom(newTestSession("host"), "Host", b)
	guest := newTestSession("guest")
	reg.JoinRoom(r.Code, guest, "Guest")

	survivors := reg.LeaveAll("guest")
	if len(survivors) != 1 || survivors[0].Code != r.Code {
		t.Fatalf("Expected the host's room to survive the sweep, got %v", survivors)
	}
	if survivors[0].HasMember("guest") {
		t.Error("Guest still a member after the sweep")
	}

	// Sweeping a connection that is nowhere is a no-op.
	if got := reg.LeaveAll("stranger"); len(got) != 0 {
		t.Errorf("Expected empty sweep result, got %v", got)
	}
}

func TestRegistry_ReapIdle(t *testing.T) {
	reg, b := newTestRegistry(Options{})
	r, _ := reg.CreateRoom(newTestSession("host"), "Host", b)
	reg.JoinRoom(r.Code, newTestSession("guest"), "Guest")

	time.Sleep(5 * time.Millisecond)
	if n := reg.ReapIdle(time.Nanosecond); n != 1 {
		t.Fatalf("Expected 1 reaped room, got %d", n)
	}
	if _, ok := reg.Get(r.Code); ok {
		t.Fatal("Reaped room still retrievable")
	}

	// Stale members discover the eviction on their next command.
	if err := r.SetReady("host", true); err == nil {
		t.Error("SetReady on a reaped room should fail")
	}
}

func TestRegistry_ReapIdle_SparesActiveRooms(t *testing.T) {
	reg, b := newTestRegistry(Options{})
	reg.CreateRoom(newTestSession("host"), "Host", b)

	if n := reg.ReapIdle(time.Hour); n != 0 {
		t.Fatalf("Expected no reaped rooms, got %d", n)
	}
	if reg.Count() != 1 {
		t.Errorf("Active room reaped")
	}
}
