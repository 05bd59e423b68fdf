package game

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/playtavola/backend/internal/models"
)

// Dispatcher routes opaque state blobs and move payloads to the engine owning
// the match's game type, and builds per-viewer redacted match views.
type Dispatcher struct {
	engines map[models.GameType]Engine
}

// NewDispatcher registers all four rule engines.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{engines: make(map[models.GameType]Engine)}
	for _, e := range []Engine{TicTacToeEngine{}, RPSEngine{}, BriscolaEngine{}, ChessEngine{}} {
		d.engines[e.GameType()] = e
	}
	return d
}

// EngineFor returns the engine for a game type.
func (d *Dispatcher) EngineFor(gt models.GameType) (Engine, error) {
	e, ok := d.engines[gt]
	if !ok {
		return nil, ErrUnknownGameType
	}
	return e, nil
}

// InitialState produces the serialized opening position for a game type.
func (d *Dispatcher) InitialState(gt models.GameType, rng *rand.Rand) ([]byte, error) {
	e, err := d.EngineFor(gt)
	if err != nil {
		return nil, err
	}
	return Encode(e.InitialState(rng))
}

// SymbolOf derives the player symbol for a participant: 1 for the creator,
// 2 for the joiner.
func SymbolOf(m *models.Match, playerID int) (int, error) {
	if playerID == m.Player1ID {
		return Player1, nil
	}
	if m.Player2ID.Valid && playerID == int(m.Player2ID.Int64) {
		return Player2, nil
	}
	return 0, ErrInvalidPlayer
}

// MoveResult is the dispatcher's verdict on a single move.
type MoveResult struct {
	NewState []byte
	Finished bool
	Outcome  models.Outcome // set only when Finished
}

// ApplyMove decodes the match state, plays the move for the given player and
// reports the successor state plus any terminal outcome. Payload shape
// mismatches surface as ErrIllegalMove.
func (d *Dispatcher) ApplyMove(m *models.Match, playerID int, move json.RawMessage) (*MoveResult, error) {
	e, err := d.EngineFor(m.GameType)
	if err != nil {
		return nil, err
	}
	symbol, err := SymbolOf(m, playerID)
	if err != nil {
		return nil, err
	}
	if m.IsWaiting() || !m.InProgress {
		return nil, ErrGameNotInProgress
	}

	state, err := e.Decode(m.GameState)
	if err != nil {
		return nil, fmt.Errorf("match %d has unreadable state: %w", m.ID, err)
	}
	next, err := e.Apply(state, symbol, move)
	if err != nil {
		return nil, err
	}
	encoded, err := Encode(next)
	if err != nil {
		return nil, err
	}

	result := &MoveResult{NewState: encoded, Finished: next.IsFinished()}
	if result.Finished {
		result.Outcome = outcomeOf(next)
	}
	return result, nil
}

// outcomeOf maps the engine winner field onto the match outcome enum; a
// finished game without a winner is a draw.
func outcomeOf(state State) models.Outcome {
	switch state.Winner() {
	case Player1:
		return models.OutcomePlayer1Win
	case Player2:
		return models.OutcomePlayer2Win
	}
	return models.OutcomeDraw
}

// MatchView is the redacted shape fanned out to one participant.
type MatchView struct {
	ID         int             `json:"id"`
	GameType   models.GameType `json:"game_type"`
	Player1ID  int             `json:"player1_id"`
	Player2ID  int             `json:"player2_id,omitempty"`
	InProgress bool            `json:"in_progress"`
	Outcome    models.Outcome  `json:"outcome,omitempty"`
	YourSymbol int             `json:"your_symbol"`
	GameState  json.RawMessage `json:"game_state,omitempty"`
}

// ViewFor repackages a match for emission to viewerID, with the game state
// redacted through the engine.
func (d *Dispatcher) ViewFor(m *models.Match, viewerID int) (*MatchView, error) {
	e, err := d.EngineFor(m.GameType)
	if err != nil {
		return nil, err
	}
	symbol, err := SymbolOf(m, viewerID)
	if err != nil {
		return nil, err
	}

	view := &MatchView{
		ID:         m.ID,
		GameType:   m.GameType,
		Player1ID:  m.Player1ID,
		InProgress: m.InProgress,
		YourSymbol: symbol,
	}
	if m.Player2ID.Valid {
		view.Player2ID = int(m.Player2ID.Int64)
	}
	if m.Outcome.Valid {
		view.Outcome = models.Outcome(m.Outcome.String)
	}
	if len(m.GameState) > 0 {
		state, err := e.Decode(m.GameState)
		if err != nil {
			return nil, fmt.Errorf("match %d has unreadable state: %w", m.ID, err)
		}
		redacted, err := Encode(e.Redact(state, symbol))
		if err != nil {
			return nil, err
		}
		view.GameState = redacted
	}
	return view, nil
}
