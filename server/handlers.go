package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/revealduo/revealserver/logger"
	"github.com/revealduo/revealserver/models"
	"github.com/revealduo/revealserver/network"
	"github.com/revealduo/revealserver/room"
	"github.com/revealduo/revealserver/services"
	"github.com/revealduo/revealserver/session"
)

// Room-stats responses serve the most recent reveals only.
const historyServeLimit = 5

// Wire error codes. Anything unexpected maps to InternalError.
const (
	codeRoomNotFound   = "RoomNotFound"
	codeRoomFull       = "RoomFull"
	codeNotInRoom      = "NotInRoom"
	codeNeedTwoPlayers = "NeedTwoPlayers"
	codeSecretsMissing = "SecretsMissing"
	codeInternalError  = "InternalError"
)

type ack struct {
	OK       bool                 `json:"ok"`
	Error    string               `json:"error,omitempty"`
	RoomCode string               `json:"roomCode,omitempty"`
	Snapshot *models.RoomSnapshot `json:"snapshot,omitempty"`
	Stats    interface{}          `json:"stats,omitempty"`
}

type createRoomReq struct {
	DisplayName string `json:"displayName"`
}

type joinRoomReq struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

type setSecretReq struct {
	RoomCode string `json:"roomCode"`
	Secret   string `json:"secret"`
}

type setReadyReq struct {
	RoomCode string `json:"roomCode"`
	Ready    bool   `json:"ready"`
}

type roomCodeReq struct {
	RoomCode string `json:"roomCode"`
}

// handlePacket dispatches one client command. A panic in any handler is
// contained here: the client gets an InternalError ack and every other
// room keeps running.
func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	s.monitor.IncMessagesReceived()
	start := time.Now()
	defer func() {
		s.monitor.ObserveCommandLatency(time.Since(start))
		if r := recover(); r != nil {
			logger.Log.Errorf("Panic handling msg %d from session %s: %v", packet.MsgID, sess.GetID(), r)
			s.respond(sess, packet.MsgID, ack{OK: false, Error: codeInternalError})
		}
	}()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess, packet)
	case network.MsgTypeSetSecret:
		s.handleSetSecret(sess, packet)
	case network.MsgTypeSetReady:
		s.handleSetReady(sess, packet)
	case network.MsgTypeRequestReveal:
		s.handleRequestReveal(sess, packet)
	case network.MsgTypeRoomStats:
		s.handleRoomStats(sess, packet)
	case network.MsgTypeServerStats:
		s.handleServerStats(sess, packet)
	default:
		logger.Log.Infof("Unknown message type %d from session %s", packet.MsgID, sess.GetID())
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req createRoomReq
	json.Unmarshal(packet.Data, &req)

	// One room per connection: drop any stale membership first.
	s.registry.LeaveAll(sess.GetID())

	r, snapshot := s.registry.CreateRoom(sess, req.DisplayName, s.broadcaster)
	s.stats.Track(sess.GetID(), services.ActionCreateRoom)
	s.monitor.SetActiveRooms(s.registry.Count())

	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.Code)
	s.respond(sess, packet.MsgID, ack{OK: true, RoomCode: r.Code, Snapshot: &snapshot})
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req joinRoomReq
	json.Unmarshal(packet.Data, &req)

	s.registry.LeaveAll(sess.GetID())

	code := room.NormalizeCode(req.RoomCode)
	snapshot, err := s.registry.JoinRoom(code, sess, req.DisplayName)
	if err != nil {
		s.respond(sess, packet.MsgID, ack{OK: false, Error: errorCode(err)})
		return
	}
	s.stats.Track(sess.GetID(), services.ActionJoinRoom)

	logger.Log.Infof("Session %s joined room %s", sess.GetID(), code)
	s.respond(sess, packet.MsgID, ack{OK: true, RoomCode: code, Snapshot: &snapshot})
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, packet *network.Packet) {
	var req roomCodeReq
	json.Unmarshal(packet.Data, &req)

	s.registry.Leave(req.RoomCode, sess.GetID())
	s.monitor.SetActiveRooms(s.registry.Count())

	// Leaving is always acknowledged, member or not.
	s.respond(sess, packet.MsgID, ack{OK: true})
}

func (s *GameServer) handleSetSecret(sess *session.Session, packet *network.Packet) {
	var req setSecretReq
	json.Unmarshal(packet.Data, &req)

	r, ok := s.registry.Get(req.RoomCode)
	if !ok {
		// An unknown room and a known room without this player answer the
		// same: the caller is not a member of anything by that code.
		s.respond(sess, packet.MsgID, ack{OK: false, Error: codeNotInRoom})
		return
	}
	if err := r.SetSecret(sess.GetID(), req.Secret); err != nil {
		s.respond(sess, packet.MsgID, ack{OK: false, Error: errorCode(err)})
		return
	}
	s.stats.Track(sess.GetID(), services.ActionSecretShared)
	s.respond(sess, packet.MsgID, ack{OK: true})
}

func (s *GameServer) handleSetReady(sess *session.Session, packet *network.Packet) {
	var req setReadyReq
	json.Unmarshal(packet.Data, &req)

	r, ok := s.registry.Get(req.RoomCode)
	if !ok {
		s.respond(sess, packet.MsgID, ack{OK: false, Error: codeNotInRoom})
		return
	}
	if err := r.SetReady(sess.GetID(), req.Ready); err != nil {
		s.respond(sess, packet.MsgID, ack{OK: false, Error: errorCode(err)})
		return
	}
	s.respond(sess, packet.MsgID, ack{OK: true})
}

func (s *GameServer) handleRequestReveal(sess *session.Session, packet *network.Packet) {
	var req roomCodeReq
	json.Unmarshal(packet.Data, &req)

	r, ok := s.registry.Get(req.RoomCode)
	if !ok {
		s.respond(sess, packet.MsgID, ack{OK: false, Error: codeRoomNotFound})
		return
	}
	if err := r.RequestReveal(); err != nil {
		s.respond(sess, packet.MsgID, ack{OK: false, Error: errorCode(err)})
		return
	}
	s.respond(sess, packet.MsgID, ack{OK: true})
}

func (s *GameServer) handleRoomStats(sess *session.Session, packet *network.Packet) {
	var req roomCodeReq
	json.Unmarshal(packet.Data, &req)

	stats, err := s.RoomStats(req.RoomCode)
	if err != nil {
		s.respond(sess, packet.MsgID, ack{OK: false, Error: errorCode(err)})
		return
	}
	s.respond(sess, packet.MsgID, ack{OK: true, Stats: stats})
}

func (s *GameServer) handleServerStats(sess *session.Session, packet *network.Packet) {
	s.respond(sess, packet.MsgID, ack{OK: true, Stats: s.ServerStats()})
}

func (s *GameServer) respond(sess *session.Session, msgID uint16, a ack) {
	data, _ := json.Marshal(a)
	if err := sess.Send(msgID, data); err != nil {
		logger.Log.Warnf("Failed to ack session %s: %v", sess.GetID(), err)
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return codeRoomNotFound
	case errors.Is(err, room.ErrRoomFull):
		return codeRoomFull
	case errors.Is(err, room.ErrNotInRoom):
		return codeNotInRoom
	case errors.Is(err, room.ErrNeedTwoPlayers):
		return codeNeedTwoPlayers
	case errors.Is(err, room.ErrSecretsMissing):
		return codeSecretsMissing
	default:
		return codeInternalError
	}
}
