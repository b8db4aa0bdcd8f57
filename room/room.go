// room/room.go
package room

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/revealduo/revealserver/models"
	"github.com/revealduo/revealserver/network"
	"github.com/revealduo/revealserver/session"
	"github.com/revealduo/revealserver/state"
)

const (
	RoleHost  = "host"
	RoleGuest = "guest"
)

// MaxPlayers is fixed: the reveal is a strictly two-player exchange.
const MaxPlayers = 2

// Player is one room member: the session that owns the slot plus the game
// state attached to it.
type Player struct {
	Session  *session.Session
	Name     string
	Secret   string
	Ready    bool
	Role     string
	JoinedAt time.Time
}

// RevealHook runs after a reveal has been broadcast, outside the room lock.
// Used for statistics and the optional archive.
type RevealHook func(code string, memberIDs []string, entries []models.RevealEntry, gameCount int)

// Room holds both players' secrets and ready flags for one code. A single
// mutex serializes every mutation, including the countdown fire path, so
// snapshot broadcasts observe the commands in order.
type Room struct {
	Code      string
	CreatedAt time.Time

	mutex        sync.Mutex
	players      map[string]*Player
	order        []string // join order, host first
	lastActivity time.Time
	gameCount    int
	history      []models.HistoryEntry
	historyLimit int
	machine      *state.Machine
	closed       bool

	broadcaster Broadcaster
	onReveal    RevealHook
}

func NewRoom(code string, b Broadcaster, sched state.Scheduler, countdown time.Duration, historyLimit int, onReveal RevealHook) *Room {
	now := time.Now()
	r := &Room{
		Code:         code,
		CreatedAt:    now,
		players:      make(map[string]*Player),
		lastActivity: now,
		historyLimit: historyLimit,
		broadcaster:  b,
		onReveal:     onReveal,
	}
	r.machine = state.NewMachine(sched, countdown, r.finishCountdown)
	return r
}

// AddPlayer seats a session. Blank display names default by role.
func (r *Room) AddPlayer(sess *session.Session, displayName, role string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if len(r.players) >= MaxPlayers {
		return ErrRoomFull
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		if role == RoleHost {
			name = "Host"
		} else {
			name = "Guest"
		}
	}

	r.players[sess.GetID()] = &Player{
		Session:  sess,
		Name:     name,
		Role:     role,
		JoinedAt: time.Now(),
	}
	r.order = append(r.order, sess.GetID())
	sess.BindRoom(r.Code)

	r.lastActivity = time.Now()
	r.broadcastSnapshotLocked()
	return nil
}

// Leave removes a member. Returns the remaining member count and whether
// the connection actually held a slot. The registry deletes the room when
// the count reaches zero.
func (r *Room) Leave(connID string) (remaining int, wasMember bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	p, ok := r.players[connID]
	if !ok {
		return len(r.players), false
	}

	delete(r.players, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	p.Session.BindRoom("")

	// A countdown cannot survive losing a player. The fire path would
	// catch this anyway; cancelling here just avoids the dead timer.
	if len(r.players) < MaxPlayers {
		r.machine.Disarm()
	}

	if len(r.players) > 0 {
		r.lastActivity = time.Now()
		r.broadcastSnapshotLocked()
	}
	return len(r.players), true
}

// SetSecret stores the trimmed secret and always drops the player's ready
// flag: stale readiness must not survive a secret change.
func (r *Room) SetSecret(connID, text string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	p, ok := r.players[connID]
	if !ok {
		return ErrNotInRoom
	}

	p.Secret = strings.TrimSpace(text)
	p.Ready = false
	r.lastActivity = time.Now()
	r.broadcastSnapshotLocked()
	return nil
}

// SetReady flips the flag and, when the reveal invariant holds (two members,
// all ready, all with secrets), schedules the countdown. The machine rejects
// a second arming while one is in flight.
func (r *Room) SetReady(connID string, ready bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	p, ok := r.players[connID]
	if !ok {
		return ErrNotInRoom
	}

	p.Ready = ready
	r.lastActivity = time.Now()
	r.broadcastSnapshotLocked()

	if r.armedLocked() && r.machine.Arm() {
		payload, _ := json.Marshal(map[string]int{"seconds": r.machine.CountdownSeconds()})
		r.broadcaster.Broadcast(r.sessionsLocked(), network.MsgTypeStartCountdown, payload)
	}
	return nil
}

// RequestReveal is the manual fallback for clients that missed the pushed
// reveal. It recomputes from current state immediately, independent of any
// scheduled countdown; a double emission near a scheduled fire is a
// harmless rebroadcast.
func (r *Room) RequestReveal() error {
	r.mutex.Lock()

	if r.closed {
		r.mutex.Unlock()
		return ErrRoomNotFound
	}
	if len(r.players) != MaxPlayers {
		r.mutex.Unlock()
		return ErrNeedTwoPlayers
	}
	for _, id := range r.order {
		if r.players[id].Secret == "" {
			r.mutex.Unlock()
			return ErrSecretsMissing
		}
	}

	r.lastActivity = time.Now()
	notify := r.revealLocked()
	r.mutex.Unlock()

	notify()
	return nil
}

// finishCountdown is the scheduled transition. The world can change during
// the delay, so it re-validates before revealing and aborts silently when
// the room was torn down or a player left.
func (r *Room) finishCountdown() {
	r.mutex.Lock()

	if !r.machine.Settle() {
		r.mutex.Unlock()
		return
	}
	if r.closed || len(r.players) != MaxPlayers {
		r.mutex.Unlock()
		return
	}

	notify := r.revealLocked()
	r.mutex.Unlock()

	notify()
}

// revealLocked performs the reveal: payload in join order, history append,
// game count bump, ready reset, reveal push followed by a fresh snapshot.
// The returned closure runs the reveal hook and must be called after the
// lock is released.
func (r *Room) revealLocked() func() {
	entries := make([]models.RevealEntry, 0, len(r.order))
	memberIDs := make([]string, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		entries = append(entries, models.RevealEntry{Name: p.Name, Secret: p.Secret})
		memberIDs = append(memberIDs, id)
	}

	r.history = append(r.history, models.HistoryEntry{
		Timestamp: time.Now(),
		Players:   entries,
	})
	if r.historyLimit > 0 && len(r.history) > r.historyLimit {
		r.history = r.history[len(r.history)-r.historyLimit:]
	}
	r.gameCount++

	for _, p := range r.players {
		p.Ready = false
	}

	sessions := r.sessionsLocked()
	payload, _ := json.Marshal(entries)
	r.broadcaster.Broadcast(sessions, network.MsgTypeReveal, payload)
	r.broadcastSnapshotLocked()

	code := r.Code
	count := r.gameCount
	hook := r.onReveal
	return func() {
		if hook != nil {
			hook(code, memberIDs, entries, count)
		}
	}
}

func (r *Room) armedLocked() bool {
	if len(r.players) != MaxPlayers {
		return false
	}
	for _, p := range r.players {
		if !p.Ready || p.Secret == "" {
			return false
		}
	}
	return true
}

func (r *Room) broadcastSnapshotLocked() {
	data, _ := json.Marshal(r.snapshotLocked())
	r.broadcaster.Broadcast(r.sessionsLocked(), network.MsgTypeRoomUpdate, data)
}

func (r *Room) snapshotLocked() models.RoomSnapshot {
	players := make([]models.PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		players = append(players, models.PlayerInfo{
			ID:        id,
			Name:      p.Name,
			Ready:     p.Ready,
			HasSecret: p.Secret != "",
			JoinedAt:  p.JoinedAt,
		})
	}
	return models.RoomSnapshot{
		RoomCode:  r.Code,
		Players:   players,
		CreatedAt: r.CreatedAt,
		GameCount: r.gameCount,
	}
}

func (r *Room) sessionsLocked() []*session.Session {
	sessions := make([]*session.Session, 0, len(r.players))
	for _, p := range r.players {
		sessions = append(sessions, p.Session)
	}
	return sessions
}

// Sessions returns the current members' sessions (thread-safe copy).
func (r *Room) Sessions() []*session.Session {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.sessionsLocked()
}

// Snapshot is the secret-redacted projection used for acks and pushes.
func (r *Room) Snapshot() models.RoomSnapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.snapshotLocked()
}

// Stats reports room metadata plus the most recent lastN reveals.
func (r *Room) Stats(lastN int) models.RoomStats {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	history := r.history
	if lastN > 0 && len(history) > lastN {
		history = history[len(history)-lastN:]
	}
	out := make([]models.HistoryEntry, len(history))
	copy(out, history)

	return models.RoomStats{
		CreatedAt:    r.CreatedAt,
		GameCount:    r.gameCount,
		TotalPlayers: len(r.players),
		History:      out,
	}
}

// Detail is the room's line in server-wide stats.
func (r *Room) Detail() models.RoomDetail {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return models.RoomDetail{
		RoomCode:     r.Code,
		PlayerCount:  len(r.players),
		GameCount:    r.gameCount,
		CreatedAt:    r.CreatedAt,
		LastActivity: r.lastActivity,
	}
}

func (r *Room) MemberCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.players)
}

func (r *Room) HasMember(connID string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	_, ok := r.players[connID]
	return ok
}

func (r *Room) LastActivity() time.Time {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.lastActivity
}

func (r *Room) GameCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.gameCount
}

// Phase reports the machine phase, mostly for tests and stats.
func (r *Room) Phase() state.Phase {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.machine.Phase()
}

// Close marks the room dead and cancels any scheduled reveal. A timer that
// already fired finds closed set and aborts. Members stay bound until their
// next command fails, matching reaper semantics.
func (r *Room) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.closed = true
	r.machine.Disarm()
}
