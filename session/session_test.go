package session

import (
	"net"
	"testing"

	"github.com/revealduo/revealserver/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID uint16, data []byte) error { return nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	if _, exists = manager.Get(sessionID); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_All(t *testing.T) {
	manager := NewManager()
	manager.Add(NewSession("a", &MockConnection{}))
	manager.Add(NewSession("b", &MockConnection{}))

	all := manager.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(all))
	}

	// The copy must stay valid while the manager mutates.
	manager.Remove("a")
	if len(all) != 2 {
		t.Error("All should return a snapshot copy")
	}
}

func TestSession_RoomBinding(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})

	if sess.RoomCode() != "" {
		t.Fatalf("New session should be unbound, got %q", sess.RoomCode())
	}

	sess.BindRoom("AB12")
	if sess.RoomCode() != "AB12" {
		t.Errorf("Expected binding AB12, got %q", sess.RoomCode())
	}

	sess.BindRoom("")
	if sess.RoomCode() != "" {
		t.Errorf("Expected cleared binding, got %q", sess.RoomCode())
	}
}
