// room/registry.go
package room

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/revealduo/revealserver/logger"
	"github.com/revealduo/revealserver/models"
	"github.com/revealduo/revealserver/session"
	"github.com/revealduo/revealserver/state"
)

// Room codes avoid glyphs that read ambiguously over a shoulder (I/O/0/1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 4
	maxCodeAttempts = 100
)

// Options tunes registry-created rooms.
type Options struct {
	Countdown    time.Duration
	HistoryLimit int
	OnReveal     RevealHook
}

// Registry owns the code -> room table. Map access is serialized here; each
// room serializes its own state.
type Registry struct {
	mutex sync.RWMutex
	rooms map[string]*Room

	sched state.Scheduler
	opts  Options
}

func NewRegistry(sched state.Scheduler, opts Options) *Registry {
	if opts.Countdown <= 0 {
		opts.Countdown = 3 * time.Second
	}
	return &Registry{
		rooms: make(map[string]*Room),
		sched: sched,
		opts:  opts,
	}
}

// CreateRoom mints a fresh code and seats the caller as host.
func (reg *Registry) CreateRoom(sess *session.Session, displayName string, b Broadcaster) (*Room, models.RoomSnapshot) {
	reg.mutex.Lock()
	code := reg.generateCodeLocked()
	r := NewRoom(code, b, reg.sched, reg.opts.Countdown, reg.opts.HistoryLimit, reg.opts.OnReveal)
	reg.rooms[code] = r
	reg.mutex.Unlock()

	// Cannot fail: the room is empty and only this caller knows the code.
	r.AddPlayer(sess, displayName, RoleHost)
	return r, r.Snapshot()
}

// JoinRoom seats the caller as guest. Codes match case-insensitively.
func (reg *Registry) JoinRoom(code string, sess *session.Session, displayName string) (models.RoomSnapshot, error) {
	r, ok := reg.Get(code)
	if !ok {
		return models.RoomSnapshot{}, ErrRoomNotFound
	}
	if err := r.AddPlayer(sess, displayName, RoleGuest); err != nil {
		return models.RoomSnapshot{}, err
	}
	return r.Snapshot(), nil
}

// Get looks a room up, normalizing the code to upper case.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	r, ok := reg.rooms[NormalizeCode(code)]
	return r, ok
}

// Remove deletes a room and cancels its pending work. Idempotent.
func (reg *Registry) Remove(code string) {
	reg.mutex.Lock()
	r, ok := reg.rooms[NormalizeCode(code)]
	if ok {
		delete(reg.rooms, NormalizeCode(code))
	}
	reg.mutex.Unlock()

	if ok {
		r.Close()
	}
}

// Leave removes the connection from the room and deletes the room when it
// empties. Returns the room if it survived, for follow-up notices.
func (reg *Registry) Leave(code, connID string) (*Room, bool) {
	r, ok := reg.Get(code)
	if !ok {
		return nil, false
	}

	remaining, wasMember := r.Leave(connID)
	if !wasMember {
		return nil, false
	}
	if remaining == 0 {
		logger.Log.Infof("Room %s empty, deleting", r.Code)
		reg.Remove(r.Code)
		return nil, true
	}
	return r, true
}

// LeaveAll sweeps every room for the connection and synthesizes a leave in
// each. A connection should only ever occupy one room; the full sweep keeps
// disconnect handling safe regardless. Returns the rooms that survived with
// members remaining.
func (reg *Registry) LeaveAll(connID string) []*Room {
	reg.mutex.RLock()
	all := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		all = append(all, r)
	}
	reg.mutex.RUnlock()

	var survivors []*Room
	for _, r := range all {
		if !r.HasMember(connID) {
			continue
		}
		if survivor, ok := reg.Leave(r.Code, connID); ok && survivor != nil {
			survivors = append(survivors, survivor)
		}
	}
	return survivors
}

// ReapIdle evicts rooms idle past the timeout. Members get no notice; their
// next command fails with RoomNotFound.
func (reg *Registry) ReapIdle(timeout time.Duration) int {
	reg.mutex.RLock()
	var stale []string
	cutoff := time.Now().Add(-timeout)
	for code, r := range reg.rooms {
		if r.LastActivity().Before(cutoff) {
			stale = append(stale, code)
		}
	}
	reg.mutex.RUnlock()

	for _, code := range stale {
		logger.Log.Infof("Reaping expired room %s", code)
		reg.Remove(code)
	}
	return len(stale)
}

func (reg *Registry) Count() int {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	return len(reg.rooms)
}

// Details lists every live room's stats line.
func (reg *Registry) Details() []models.RoomDetail {
	reg.mutex.RLock()
	all := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		all = append(all, r)
	}
	reg.mutex.RUnlock()

	details := make([]models.RoomDetail, 0, len(all))
	for _, r := range all {
		details = append(details, r.Detail())
	}
	return details
}

// NormalizeCode upper-cases client input so codes match case-insensitively.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateCodeLocked mints a code unique among live rooms, falling back to
// a time-derived code if random draws keep colliding.
func (reg *Registry) generateCodeLocked() string {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		buf := make([]byte, codeLength)
		for i := range buf {
			buf[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if _, exists := reg.rooms[code]; !exists {
			return code
		}
	}

	code := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	if len(code) > codeLength {
		code = code[len(code)-codeLength:]
	}
	return code
}
