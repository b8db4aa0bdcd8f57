// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/revealduo/revealserver/models"
)

// PQStore implements Store on database/sql, for deployments that prefer
// plain SQL over GORM.
type PQStore struct {
	db *sql.DB
}

func NewPQStore(host string, port int, user, password, dbname string) (*PQStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PQStore{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS reveal_records (
            id SERIAL PRIMARY KEY,
            room_code TEXT NOT NULL,
            game_count INT NOT NULL,
            players JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_reveal_records_room_code
            ON reveal_records (room_code)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS player_stats (
            id SERIAL PRIMARY KEY,
            conn_id TEXT UNIQUE NOT NULL,
            rooms_created INT NOT NULL DEFAULT 0,
            rooms_joined INT NOT NULL DEFAULT 0,
            games_played INT NOT NULL DEFAULT 0,
            secrets_shared INT NOT NULL DEFAULT 0,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	return err
}

func (p *PQStore) SaveRevealRecord(roomCode string, gameCount int, players []models.RevealEntry) error {
	data, err := json.Marshal(players)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(
		`INSERT INTO reveal_records (room_code, game_count, players) VALUES ($1, $2, $3)`,
		roomCode, gameCount, data)
	return err
}

func (p *PQStore) SavePlayerStats(connID string, stats models.PlayerStats) error {
	_, err := p.db.Exec(`
        INSERT INTO player_stats (conn_id, rooms_created, rooms_joined, games_played, secrets_shared)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (conn_id) DO UPDATE SET
            rooms_created = EXCLUDED.rooms_created,
            rooms_joined = EXCLUDED.rooms_joined,
            games_played = EXCLUDED.games_played,
            secrets_shared = EXCLUDED.secrets_shared,
            updated_at = CURRENT_TIMESTAMP`,
		connID, stats.RoomsCreated, stats.RoomsJoined, stats.GamesPlayed, stats.SecretsShared)
	return err
}

func (p *PQStore) RecentRecords(roomCode string, limit int) ([]models.HistoryEntry, error) {
	rows, err := p.db.Query(
		`SELECT players, created_at FROM reveal_records
         WHERE room_code = $1 ORDER BY created_at DESC LIMIT $2`,
		roomCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			data      []byte
			createdAt time.Time
		)
		if err := rows.Scan(&data, &createdAt); err != nil {
			return nil, err
		}
		var players []models.RevealEntry
		if err := json.Unmarshal(data, &players); err != nil {
			return nil, err
		}
		entries = append(entries, models.HistoryEntry{
			Timestamp: createdAt,
			Players:   players,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrRecordNotFound
	}
	return entries, nil
}

func (p *PQStore) Close() error {
	return p.db.Close()
}
