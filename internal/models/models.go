package models

import (
	"database/sql"
	"time"
)

// GameType identifies which rule engine a match is played under.
type GameType string

const (
	GameTicTacToe         GameType = "TicTacToe"
	GameRockPaperScissors GameType = "RockPaperScissors"
	GameBriscola          GameType = "Briscola"
	GameChess             GameType = "Chess"
)

// Valid reports whether gt is one of the supported game types.
func (gt GameType) Valid() bool {
	switch gt {
	case GameTicTacToe, GameRockPaperScissors, GameBriscola, GameChess:
		return true
	}
	return false
}

// Outcome is the terminal result of a match.
type Outcome string

const (
	OutcomePlayer1Win Outcome = "Player1Win"
	OutcomePlayer2Win Outcome = "Player2Win"
	OutcomeDraw       Outcome = "Draw"
)

// EndReason records how a match reached its outcome.
type EndReason string

const (
	EndReasonEnded         EndReason = "ended"
	EndReasonDisconnection EndReason = "disconnection"
)

// Player represents a registered user.
type Player struct {
	ID            int       `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	PublicKeyHint string    `db:"public_key_hint" json:"public_key_hint"`
	PublicKey     string    `db:"public_key" json:"-"`
	Score         int       `db:"score" json:"score"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Match represents a persisted two-player game instance. While Player2ID is
// null the match is a waiting slot and accepts no state transitions.
type Match struct {
	ID          int            `db:"id" json:"id"`
	Player1ID   int            `db:"player1_id" json:"player1_id"`
	Player2ID   sql.NullInt64  `db:"player2_id" json:"player2_id,omitempty"`
	GameType    GameType       `db:"game_type" json:"game_type"`
	InProgress  bool           `db:"in_progress" json:"in_progress"`
	Outcome     sql.NullString `db:"outcome" json:"outcome,omitempty"`
	EndReason   sql.NullString `db:"end_reason" json:"end_reason,omitempty"`
	GameState   []byte         `db:"game_state" json:"-"`
	Scored      bool           `db:"scored" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	CompletedAt sql.NullTime   `db:"completed_at" json:"completed_at,omitempty"`
}

// IsWaiting reports whether the match is still an open slot.
func (m *Match) IsWaiting() bool {
	return !m.Player2ID.Valid
}

// OpponentOf returns the other participant, or 0 for a waiting slot.
func (m *Match) OpponentOf(playerID int) int {
	if playerID == m.Player1ID && m.Player2ID.Valid {
		return int(m.Player2ID.Int64)
	}
	if m.Player2ID.Valid && playerID == int(m.Player2ID.Int64) {
		return m.Player1ID
	}
	return 0
}

// HasParticipant reports whether playerID plays in this match.
func (m *Match) HasParticipant(playerID int) bool {
	return playerID == m.Player1ID || (m.Player2ID.Valid && playerID == int(m.Player2ID.Int64))
}

// PlayerStats is the aggregate record returned by the stats endpoint.
type PlayerStats struct {
	PlayerID int `db:"player_id" json:"player_id"`
	Total    int `db:"total" json:"total"`
	Won      int `db:"won" json:"won"`
	Lost     int `db:"lost" json:"lost"`
	Draw     int `db:"draw" json:"draw"`
	Dropped  int `db:"dropped" json:"dropped"`
	Score    int `db:"score" json:"score"`
}

// LeaderboardEntry is a single ranked row.
type LeaderboardEntry struct {
	PlayerID   int    `db:"player_id" json:"player_id"`
	PlayerName string `db:"player_name" json:"player_name"`
	Rank       int    `json:"rank"`
	Score      int    `db:"score" json:"score"`
}
