// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/revealduo/revealserver/models"
)

// Store is the optional reveal archive. Live room state never touches it;
// only completed games and play statistics are written, append-style, so a
// restart loses nothing the protocol promises to keep.
type Store interface {
	SaveRevealRecord(roomCode string, gameCount int, players []models.RevealEntry) error
	SavePlayerStats(connID string, stats models.PlayerStats) error
	RecentRecords(roomCode string, limit int) ([]models.HistoryEntry, error)
	Close() error
}

var ErrRecordNotFound = errors.New("record not found")
