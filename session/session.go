// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/revealduo/revealserver/network"
)

// Session is one live connection. RoomCode is the binding to the room the
// connection currently occupies; it is a routing hint, not the membership
// authority (the room's player map is), so the disconnect sweep stays safe
// even if the two ever disagree.
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time

	roomCode string
	mutex    sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.LastActive = time.Now()
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

// BindRoom records the room this connection occupies. An empty code clears
// the binding.
func (s *Session) BindRoom(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.roomCode = code
}

// RoomCode returns the current binding, "" when unbound.
func (s *Session) RoomCode() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomCode
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks every live session by connection id.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// All returns a copy of the live session set, safe to iterate while
// sessions come and go.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}
