package room

import "github.com/revealduo/revealserver/session"

// Broadcaster fans a push out to a set of live connections. A failed send
// to one connection must not stop delivery to the rest. This is defined
// here to break the import cycle between room and broadcast.
type Broadcaster interface {
	Broadcast(sessions []*session.Session, msgID uint16, data []byte)
}
