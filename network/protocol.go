package network

// Client -> server commands. The ack for a command is sent back with the
// same message ID.
const (
	MsgTypeHeartbeat     = 1
	MsgTypeJoinRoom      = 101
	MsgTypeLeaveRoom     = 102
	MsgTypeCreateRoom    = 103
	MsgTypeSetSecret     = 104
	MsgTypeSetReady      = 105
	MsgTypeRequestReveal = 106
	MsgTypeRoomStats     = 107
	MsgTypeServerStats   = 108
)

// Server -> client pushes.
const (
	MsgTypeRoomUpdate         = 301
	MsgTypeStartCountdown     = 302
	MsgTypeReveal             = 303
	MsgTypePlayerDisconnected = 304
	MsgTypeConnected          = 305
	MsgTypeServerShutdown     = 306
)
