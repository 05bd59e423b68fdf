package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playtavola/backend/internal/models"
)

// Errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrMatchFinished = errors.New("match already finished")
)

// Store mediates all persistent state. Multi-step operations run inside a
// single transaction; callers serialize conflicting writers (the matchmaker
// holds its lock across Store calls for the find-or-create path).
type Store struct {
	db *sqlx.DB
}

// New wraps an sqlx handle in a Store.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// CreatePlayer registers a new player and returns its id.
func (s *Store) CreatePlayer(name, hint, publicKey string) (int, error) {
	res, err := s.db.Exec(`
		INSERT INTO players (name, public_key_hint, public_key, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, name, hint, publicKey)
	if err != nil {
		return 0, fmt.Errorf("failed to create player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// GetPlayer fetches a player by id.
func (s *Store) GetPlayer(id int) (*models.Player, error) {
	var p models.Player
	err := s.db.Get(&p, `SELECT * FROM players WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateWaitingMatch opens a waiting slot for player1 and returns the match id.
func (s *Store) CreateWaitingMatch(player1ID int, gameType models.GameType) (int, error) {
	res, err := s.db.Exec(`
		INSERT INTO matches (player1_id, game_type, in_progress, created_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
	`, player1ID, gameType)
	if err != nil {
		return 0, fmt.Errorf("failed to create waiting match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// FindWaitingMatch returns the earliest-created open slot of the given type
// not owned by excludingPlayer, or ErrNotFound.
func (s *Store) FindWaitingMatch(excludingPlayer int, gameType models.GameType) (*models.Match, error) {
	var m models.Match
	err := s.db.Get(&m, `
		SELECT * FROM matches
		WHERE game_type = ?
		  AND player2_id IS NULL
		  AND in_progress = 1
		  AND player1_id != ?
		ORDER BY created_at, id
		LIMIT 1
	`, gameType, excludingPlayer)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// JoinWaitingMatch fills the open slot with player2 and the engine's opening
// state. The WHERE clause guards against a slot claimed by a concurrent join.
func (s *Store) JoinWaitingMatch(matchID, player2ID int, initialState []byte) error {
	res, err := s.db.Exec(`
		UPDATE matches
		SET player2_id = ?, game_state = ?
		WHERE id = ? AND player2_id IS NULL AND in_progress = 1
	`, player2ID, initialState, matchID)
	if err != nil {
		return fmt.Errorf("failed to join match %d: %w", matchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetActiveMatchFor returns the player's single in-progress match (waiting
// slots included), or ErrNotFound.
func (s *Store) GetActiveMatchFor(playerID int) (*models.Match, error) {
	var m models.Match
	err := s.db.Get(&m, `
		SELECT * FROM matches
		WHERE in_progress = 1 AND (player1_id = ? OR player2_id = ?)
		ORDER BY created_at DESC
		LIMIT 1
	`, playerID, playerID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatch fetches a match by id.
func (s *Store) GetMatch(matchID int) (*models.Match, error) {
	var m models.Match
	err := s.db.Get(&m, `SELECT * FROM matches WHERE id = ?`, matchID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMatch persists a new game state. When the match goes terminal the
// outcome, end reason and completion time are frozen alongside it.
func (s *Store) UpdateMatch(matchID int, newState []byte, inProgress bool, outcome models.Outcome, reason models.EndReason) error {
	var res sql.Result
	var err error
	if inProgress {
		res, err = s.db.Exec(`
			UPDATE matches SET game_state = ?
			WHERE id = ? AND in_progress = 1
		`, newState, matchID)
	} else {
		res, err = s.db.Exec(`
			UPDATE matches
			SET game_state = ?, in_progress = 0, outcome = ?, end_reason = ?, completed_at = CURRENT_TIMESTAMP
			WHERE id = ? AND in_progress = 1
		`, newState, outcome, reason, matchID)
	}
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", matchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMatchFinished
	}
	return nil
}

// DeleteMatch removes a match record (used for abandoned waiting slots).
func (s *Store) DeleteMatch(matchID int) error {
	_, err := s.db.Exec(`DELETE FROM matches WHERE id = ?`, matchID)
	return err
}

// ApplyScoreDelta applies winner +3 / loser -1, or +1 each on a draw. The
// scored flag makes the call idempotent over the lifetime of the match record.
func (s *Store) ApplyScoreDelta(m *models.Match) error {
	if m.InProgress || !m.Outcome.Valid || !m.Player2ID.Valid {
		return fmt.Errorf("match %d has no terminal outcome", m.ID)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Claim the scoring exactly once
	res, err := tx.Exec(`UPDATE matches SET scored = 1 WHERE id = ? AND scored = 0`, m.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil // already scored
	}

	p1, p2 := m.Player1ID, int(m.Player2ID.Int64)
	var d1, d2 int
	switch models.Outcome(m.Outcome.String) {
	case models.OutcomePlayer1Win:
		d1, d2 = 3, -1
	case models.OutcomePlayer2Win:
		d1, d2 = -1, 3
	case models.OutcomeDraw:
		d1, d2 = 1, 1
	default:
		return fmt.Errorf("match %d has unknown outcome %q", m.ID, m.Outcome.String)
	}

	if _, err := tx.Exec(`UPDATE players SET score = score + ? WHERE id = ?`, d1, p1); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE players SET score = score + ? WHERE id = ?`, d2, p2); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	m.Scored = true
	return nil
}

// Leaderboard returns score-ordered entries plus the total player count.
// limit is clamped to [1,100]; negative offsets are treated as 0.
func (s *Store) Leaderboard(limit, offset int) ([]models.LeaderboardEntry, int, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var entries []models.LeaderboardEntry
	err := s.db.Select(&entries, `
		SELECT id AS player_id, name AS player_name, score
		FROM players
		ORDER BY score DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range entries {
		entries[i].Rank = offset + i + 1
	}

	var total int
	if err := s.db.Get(&total, `SELECT COUNT(*) FROM players`); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// StatsFor aggregates the finished-match record for a player. Draws reached by
// disconnect forfeits count as dropped, not draw.
func (s *Store) StatsFor(playerID int) (*models.PlayerStats, error) {
	p, err := s.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}

	stats := models.PlayerStats{PlayerID: playerID, Score: p.Score}
	rows, err := s.db.Queryx(`
		SELECT player1_id, player2_id, outcome, end_reason
		FROM matches
		WHERE in_progress = 0 AND outcome IS NOT NULL
		  AND (player1_id = ? OR player2_id = ?)
	`, playerID, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Match
		if err := rows.StructScan(&m); err != nil {
			return nil, err
		}
		stats.Total++

		won := (models.Outcome(m.Outcome.String) == models.OutcomePlayer1Win && m.Player1ID == playerID) ||
			(models.Outcome(m.Outcome.String) == models.OutcomePlayer2Win && m.Player2ID.Valid && int(m.Player2ID.Int64) == playerID)
		switch {
		case models.Outcome(m.Outcome.String) == models.OutcomeDraw:
			if models.EndReason(m.EndReason.String) == models.EndReasonDisconnection {
				stats.Dropped++
			} else {
				stats.Draw++
			}
		case won:
			stats.Won++
		default:
			stats.Lost++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ActiveMatchesFor returns the 0-or-1 element slice the HTTP API exposes.
func (s *Store) ActiveMatchesFor(playerID int) ([]models.Match, error) {
	m, err := s.GetActiveMatchFor(playerID)
	if err == ErrNotFound {
		return []models.Match{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []models.Match{*m}, nil
}
