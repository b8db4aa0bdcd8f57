package broadcast

import (
	"errors"
	"net"
	"os"
	"sync"
	"testing"

	"github.com/revealduo/revealserver/logger"
	"github.com/revealduo/revealserver/network"
	"github.com/revealduo/revealserver/session"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// MockConnection records sends and can be told to fail.
type MockConnection struct {
	mu   sync.Mutex
	fail bool
	sent []uint16
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("connection gone")
	}
	m.sent = append(m.sent, msgID)
	return nil
}

func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func (m *MockConnection) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestBroadcast_SkipsFailingConnection(t *testing.T) {
	manager := session.NewManager()
	b := NewRoomBroadcaster(manager, nil)

	dead := &MockConnection{fail: true}
	alive := &MockConnection{}
	sessions := []*session.Session{
		session.NewSession("dead", dead),
		session.NewSession("alive", alive),
	}

	b.Broadcast(sessions, network.MsgTypeRoomUpdate, []byte(`{}`))

	if alive.sentCount() != 1 {
		t.Fatalf("Healthy connection should still receive the push, got %d sends", alive.sentCount())
	}
}

func TestBroadcastToAll_ReachesEverySession(t *testing.T) {
	manager := session.NewManager()
	b := NewRoomBroadcaster(manager, nil)

	conns := []*MockConnection{{}, {}, {}}
	for i, c := range conns {
		manager.Add(session.NewSession(string(rune('a'+i)), c))
	}

	b.BroadcastToAll(network.MsgTypeServerShutdown, []byte(`{}`))

	for i, c := range conns {
		if c.sentCount() != 1 {
			t.Errorf("Connection %d got %d sends, want 1", i, c.sentCount())
		}
	}
}
