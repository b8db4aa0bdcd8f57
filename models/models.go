// models/models.go
package models

import (
	"time"
)

// PlayerInfo is the secret-redacted view of a room member.
type PlayerInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Ready     bool      `json:"ready"`
	HasSecret bool      `json:"hasSecret"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// RoomSnapshot is the projection broadcast to clients on every room mutation.
// Secret values never appear here.
type RoomSnapshot struct {
	RoomCode  string       `json:"roomCode"`
	Players   []PlayerInfo `json:"players"`
	CreatedAt time.Time    `json:"createdAt"`
	GameCount int          `json:"gameCount"`
}

// RevealEntry is one player's slice of a reveal payload.
type RevealEntry struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

// HistoryEntry records one completed reveal.
type HistoryEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	Players   []RevealEntry `json:"players"`
}

// RoomStats is the per-room stats response.
type RoomStats struct {
	CreatedAt    time.Time      `json:"createdAt"`
	GameCount    int            `json:"gameCount"`
	TotalPlayers int            `json:"totalPlayers"`
	History      []HistoryEntry `json:"history"`
}

// RoomDetail is one room's line in the server stats response.
type RoomDetail struct {
	RoomCode     string    `json:"roomCode"`
	PlayerCount  int       `json:"playerCount"`
	GameCount    int       `json:"gameCount"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// ServerStats is the server-wide stats response.
type ServerStats struct {
	TotalRooms        int          `json:"totalRooms"`
	ActiveConnections int          `json:"activeConnections"`
	TotalPlayers      int          `json:"totalPlayers"`
	UptimeSeconds     float64      `json:"uptime"`
	Rooms             []RoomDetail `json:"roomsDetail"`
}

// PlayerStats tracks per-connection play statistics.
type PlayerStats struct {
	RoomsCreated  int       `json:"roomsCreated"`
	RoomsJoined   int       `json:"roomsJoined"`
	GamesPlayed   int       `json:"gamesPlayed"`
	SecretsShared int       `json:"secretsShared"`
	FirstSeen     time.Time `json:"firstSeen"`
	LastSeen      time.Time `json:"lastSeen"`
}
