package game

import (
	"database/sql"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/playtavola/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairedMatch(t *testing.T, d *Dispatcher, gt models.GameType, p1, p2 int) *models.Match {
	t.Helper()
	initial, err := d.InitialState(gt, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return &models.Match{
		ID:         1,
		Player1ID:  p1,
		Player2ID:  sql.NullInt64{Int64: int64(p2), Valid: true},
		GameType:   gt,
		InProgress: true,
		GameState:  initial,
	}
}

func TestDispatcherRegistersAllGameTypes(t *testing.T) {
	d := NewDispatcher()
	for _, gt := range []models.GameType{models.GameTicTacToe, models.GameRockPaperScissors, models.GameBriscola, models.GameChess} {
		_, err := d.EngineFor(gt)
		assert.NoError(t, err, "engine missing for %s", gt)
	}

	_, err := d.EngineFor("Checkers")
	assert.ErrorIs(t, err, ErrUnknownGameType)
}

func TestSymbolOf(t *testing.T) {
	d := NewDispatcher()
	m := pairedMatch(t, d, models.GameTicTacToe, 10, 20)

	sym, err := SymbolOf(m, 10)
	require.NoError(t, err)
	assert.Equal(t, Player1, sym)

	sym, err = SymbolOf(m, 20)
	require.NoError(t, err)
	assert.Equal(t, Player2, sym)

	_, err = SymbolOf(m, 30)
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestApplyMoveOnWaitingMatch(t *testing.T) {
	d := NewDispatcher()
	m := &models.Match{ID: 1, Player1ID: 10, GameType: models.GameTicTacToe, InProgress: true}

	_, err := d.ApplyMove(m, 10, json.RawMessage(`{"row":0,"col":0}`))
	assert.Error(t, err)
}

func TestApplyMoveToCompletion(t *testing.T) {
	d := NewDispatcher()
	m := pairedMatch(t, d, models.GameTicTacToe, 10, 20)

	moves := []struct {
		playerID int
		payload  string
	}{
		{10, `{"row":0,"col":0}`},
		{20, `{"row":1,"col":0}`},
		{10, `{"row":0,"col":1}`},
		{20, `{"row":1,"col":1}`},
		{10, `{"row":0,"col":2}`},
	}
	var result *MoveResult
	for _, mv := range moves {
		var err error
		result, err = d.ApplyMove(m, mv.playerID, json.RawMessage(mv.payload))
		require.NoError(t, err)
		m.GameState = result.NewState
	}

	assert.True(t, result.Finished)
	assert.Equal(t, models.OutcomePlayer1Win, result.Outcome)
}

func TestApplyMoveDrawOutcome(t *testing.T) {
	d := NewDispatcher()
	m := pairedMatch(t, d, models.GameRockPaperScissors, 10, 20)

	// Engine says finished with no winner means a draw outcome
	state := &RPSState{Wins1: 1, Wins2: 1, Rounds: []RPSRound{{Move1: MoveRock, Move2: MoveScissors}, {Move1: MoveRock, Move2: MovePaper}, {}}}
	encoded, err := Encode(state)
	require.NoError(t, err)
	m.GameState = encoded

	result, err := d.ApplyMove(m, 10, json.RawMessage(`{"move":"rock"}`))
	require.NoError(t, err)
	assert.False(t, result.Finished)

	assert.Equal(t, models.OutcomeDraw, outcomeOf(&RPSState{}))
}

func TestViewForRedactsOpponentPick(t *testing.T) {
	d := NewDispatcher()
	m := pairedMatch(t, d, models.GameRockPaperScissors, 10, 20)

	result, err := d.ApplyMove(m, 10, json.RawMessage(`{"move":"rock"}`))
	require.NoError(t, err)
	m.GameState = result.NewState

	view, err := d.ViewFor(m, 20)
	require.NoError(t, err)
	assert.Equal(t, Player2, view.YourSymbol)

	var s RPSState
	require.NoError(t, json.Unmarshal(view.GameState, &s))
	assert.Equal(t, MoveRedacted, s.Rounds[0].Move1)

	// The mover's own view keeps the pick
	view, err = d.ViewFor(m, 10)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(view.GameState, &s))
	assert.Equal(t, MoveRock, s.Rounds[0].Move1)
}

func TestViewForStranger(t *testing.T) {
	d := NewDispatcher()
	m := pairedMatch(t, d, models.GameTicTacToe, 10, 20)

	_, err := d.ViewFor(m, 99)
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}
