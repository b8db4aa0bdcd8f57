// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/revealduo/revealserver/models"
)

// GormPostgres implements Store on GORM.
type GormPostgres struct {
	db *gorm.DB
}

func NewGormPostgres(host string, port int, user, password, dbname string) (*GormPostgres, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormRevealRecord{}, &models.GormPlayerStats{}); err != nil {
		return nil, err
	}

	return &GormPostgres{db: db}, nil
}

func (p *GormPostgres) SaveRevealRecord(roomCode string, gameCount int, players []models.RevealEntry) error {
	record := models.GormRevealRecord{
		RoomCode:  roomCode,
		GameCount: gameCount,
		Players:   players,
	}
	return p.db.Create(&record).Error
}

func (p *GormPostgres) SavePlayerStats(connID string, stats models.PlayerStats) error {
	var row models.GormPlayerStats
	result := p.db.Where("conn_id = ?", connID).First(&row)

	if result.Error == gorm.ErrRecordNotFound {
		row = models.GormPlayerStats{
			ConnID:        connID,
			RoomsCreated:  stats.RoomsCreated,
			RoomsJoined:   stats.RoomsJoined,
			GamesPlayed:   stats.GamesPlayed,
			SecretsShared: stats.SecretsShared,
		}
		return p.db.Create(&row).Error
	} else if result.Error != nil {
		return result.Error
	}

	row.RoomsCreated = stats.RoomsCreated
	row.RoomsJoined = stats.RoomsJoined
	row.GamesPlayed = stats.GamesPlayed
	row.SecretsShared = stats.SecretsShared
	return p.db.Save(&row).Error
}

func (p *GormPostgres) RecentRecords(roomCode string, limit int) ([]models.HistoryEntry, error) {
	var rows []models.GormRevealRecord
	err := p.db.Where("room_code = ?", roomCode).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrRecordNotFound
	}

	entries := make([]models.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.HistoryEntry{
			Timestamp: row.CreatedAt,
			Players:   row.Players,
		})
	}
	return entries, nil
}

func (p *GormPostgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
