// broadcast/broadcast.go
package broadcast

import (
	"github.com/revealduo/revealserver/logger"
	"github.com/revealduo/revealserver/session"
)

// Broadcaster is the push fan-out surface. Delivery is fire-and-forget:
// a connection that fails to take a message is skipped, never retried, and
// never blocks the rest of the room.
type Broadcaster interface {
	Broadcast(sessions []*session.Session, msgID uint16, data []byte)
	BroadcastToAll(msgID uint16, data []byte)
}

// Metrics is the slice of the monitor the gateway reports to.
type Metrics interface {
	IncMessagesSent()
	IncSendFailures()
}

// RoomBroadcaster fans pushes out to sets of live connections.
type RoomBroadcaster struct {
	sessionManager *session.Manager
	metrics        Metrics
}

func NewRoomBroadcaster(sessionManager *session.Manager, metrics Metrics) *RoomBroadcaster {
	return &RoomBroadcaster{
		sessionManager: sessionManager,
		metrics:        metrics,
	}
}

// Broadcast sends one message to each given session. Failures are logged
// and skipped so one dead connection cannot starve its peer of updates.
func (b *RoomBroadcaster) Broadcast(sessions []*session.Session, msgID uint16, data []byte) {
	for _, s := range sessions {
		if err := s.Send(msgID, data); err != nil {
			logger.Log.Warnf("Broadcast to session %s failed: %v", s.GetID(), err)
			if b.metrics != nil {
				b.metrics.IncSendFailures()
			}
			continue
		}
		if b.metrics != nil {
			b.metrics.IncMessagesSent()
		}
	}
}

// BroadcastToAll reaches every live connection, room-bound or not. Used for
// the shutdown notice.
func (b *RoomBroadcaster) BroadcastToAll(msgID uint16, data []byte) {
	b.Broadcast(b.sessionManager.All(), msgID, data)
}
