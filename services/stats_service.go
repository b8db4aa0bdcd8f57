// services/stats_service.go
package services

import (
	"sync"
	"time"

	"github.com/revealduo/revealserver/logger"
	"github.com/revealduo/revealserver/models"
	"github.com/revealduo/revealserver/persistence"
)

// Stat actions tracked per connection.
const (
	ActionCreateRoom    = "createRoom"
	ActionJoinRoom      = "joinRoom"
	ActionGameCompleted = "gameCompleted"
	ActionSecretShared  = "secretShared"
)

// StatsService keeps per-connection play statistics in memory and, when an
// archive store is configured, writes reveal records and stats through to
// it. Store failures are logged and swallowed: the archive is best-effort
// and must never fail a game command.
type StatsService struct {
	mutex   sync.Mutex
	players map[string]*models.PlayerStats
	store   persistence.Store // nil when archiving is disabled
}

func NewStatsService(store persistence.Store) *StatsService {
	return &StatsService{
		players: make(map[string]*models.PlayerStats),
		store:   store,
	}
}

// Track records one action for a connection.
func (s *StatsService) Track(connID, action string) {
	s.mutex.Lock()
	stats := s.touchLocked(connID)

	switch action {
	case ActionCreateRoom:
		stats.RoomsCreated++
	case ActionJoinRoom:
		stats.RoomsJoined++
	case ActionGameCompleted:
		stats.GamesPlayed++
	case ActionSecretShared:
		stats.SecretsShared++
	}
	snapshot := *stats
	s.mutex.Unlock()

	if s.store != nil {
		if err := s.store.SavePlayerStats(connID, snapshot); err != nil {
			logger.Log.Warnf("Failed to archive stats for %s: %v", connID, err)
		}
	}
}

// RecordReveal tracks a completed game for every member and archives the
// reveal record. Wired as the room registry's reveal hook.
func (s *StatsService) RecordReveal(roomCode string, memberIDs []string, entries []models.RevealEntry, gameCount int) {
	for _, id := range memberIDs {
		s.Track(id, ActionGameCompleted)
	}

	if s.store != nil {
		if err := s.store.SaveRevealRecord(roomCode, gameCount, entries); err != nil {
			logger.Log.Warnf("Failed to archive reveal for room %s: %v", roomCode, err)
		}
	}
}

// Get returns a copy of one connection's stats.
func (s *StatsService) Get(connID string) (models.PlayerStats, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	stats, ok := s.players[connID]
	if !ok {
		return models.PlayerStats{}, false
	}
	return *stats, true
}

// TotalPlayers counts every connection ever seen since process start.
func (s *StatsService) TotalPlayers() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.players)
}

func (s *StatsService) touchLocked(connID string) *models.PlayerStats {
	stats, ok := s.players[connID]
	if !ok {
		now := time.Now()
		stats = &models.PlayerStats{FirstSeen: now}
		s.players[connID] = stats
	}
	stats.LastSeen = time.Now()
	return stats
}
