// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormRevealRecord archives one completed reveal.
type GormRevealRecord struct {
	gorm.Model
	RoomCode  string        `gorm:"index;not null"`
	GameCount int           `gorm:"not null"`
	Players   []RevealEntry `gorm:"serializer:json;type:jsonb;not null"`
}

// GormPlayerStats archives play statistics keyed by connection id.
type GormPlayerStats struct {
	gorm.Model
	ConnID        string `gorm:"uniqueIndex;not null"`
	RoomsCreated  int    `gorm:"default:0"`
	RoomsJoined   int    `gorm:"default:0"`
	GamesPlayed   int    `gorm:"default:0"`
	SecretsShared int    `gorm:"default:0"`
}
