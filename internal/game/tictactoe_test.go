package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tttMove(t *testing.T, row, col int) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(TicTacToeMove{Row: row, Col: col})
	require.NoError(t, err)
	return data
}

func TestTicTacToeDiagonalWin(t *testing.T) {
	e := TicTacToeEngine{}
	state := e.InitialState(nil)

	moves := []struct {
		player   int
		row, col int
	}{
		{Player1, 0, 0},
		{Player2, 0, 1},
		{Player1, 1, 1},
		{Player2, 0, 2},
		{Player1, 2, 2},
	}
	for _, m := range moves {
		next, err := e.Apply(state, m.player, tttMove(t, m.row, m.col))
		require.NoError(t, err)
		state = next
	}

	assert.True(t, state.IsFinished())
	assert.Equal(t, Player1, state.Winner())

	// No moves after the terminal position
	_, err := e.Apply(state, Player2, tttMove(t, 2, 0))
	assert.ErrorIs(t, err, ErrGameNotInProgress)
}

func TestTicTacToeTurnOrder(t *testing.T) {
	e := TicTacToeEngine{}
	state := e.InitialState(nil)

	_, err := e.Apply(state, Player2, tttMove(t, 0, 0))
	assert.ErrorIs(t, err, ErrWrongTurn)

	state, err = e.Apply(state, Player1, tttMove(t, 0, 0))
	require.NoError(t, err)

	_, err = e.Apply(state, Player1, tttMove(t, 1, 1))
	assert.ErrorIs(t, err, ErrWrongTurn)
}

func TestTicTacToeIllegalMoves(t *testing.T) {
	e := TicTacToeEngine{}
	state := e.InitialState(nil)

	state, err := e.Apply(state, Player1, tttMove(t, 1, 1))
	require.NoError(t, err)

	// Occupied cell
	_, err = e.Apply(state, Player2, tttMove(t, 1, 1))
	assert.ErrorIs(t, err, ErrIllegalMove)

	// Out of range
	_, err = e.Apply(state, Player2, tttMove(t, 3, 0))
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = e.Apply(state, Player2, tttMove(t, 0, -1))
	assert.ErrorIs(t, err, ErrIllegalMove)

	// Payload that is not a move
	_, err = e.Apply(state, Player2, json.RawMessage(`"e2e4"`))
	assert.ErrorIs(t, err, ErrIllegalMove)

	// Unknown symbol
	_, err = e.Apply(state, 3, tttMove(t, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestTicTacToeDraw(t *testing.T) {
	e := TicTacToeEngine{}
	state := e.InitialState(nil)

	moves := []struct {
		player   int
		row, col int
	}{
		{Player1, 0, 0},
		{Player2, 0, 1},
		{Player1, 0, 2},
		{Player2, 1, 1},
		{Player1, 1, 0},
		{Player2, 1, 2},
		{Player1, 2, 1},
		{Player2, 2, 0},
		{Player1, 2, 2},
	}
	for _, m := range moves {
		next, err := e.Apply(state, m.player, tttMove(t, m.row, m.col))
		require.NoError(t, err)
		state = next
	}

	assert.True(t, state.IsFinished())
	assert.Equal(t, 0, state.Winner())
}

func TestTicTacToeApplyDoesNotMutateInput(t *testing.T) {
	e := TicTacToeEngine{}
	state := e.InitialState(nil)

	next, err := e.Apply(state, Player1, tttMove(t, 0, 0))
	require.NoError(t, err)

	before := state.(*TicTacToeState)
	after := next.(*TicTacToeState)
	assert.Equal(t, 0, before.Board[0][0])
	assert.Equal(t, Player1, before.CurrentPlayer)
	assert.Equal(t, Player1, after.Board[0][0])
	assert.Equal(t, Player2, after.CurrentPlayer)
}

func TestTicTacToeRedactIsIdentity(t *testing.T) {
	e := TicTacToeEngine{}
	state, err := e.Apply(e.InitialState(nil), Player1, tttMove(t, 1, 1))
	require.NoError(t, err)

	for _, viewer := range []int{Player1, Player2} {
		redacted := e.Redact(state, viewer)
		assert.Equal(t, state, redacted)
		assert.NotSame(t, state, redacted)
	}
}

func TestTicTacToeEncodeDecodeRoundTrip(t *testing.T) {
	e := TicTacToeEngine{}
	state, err := e.Apply(e.InitialState(nil), Player1, tttMove(t, 2, 0))
	require.NoError(t, err)

	data, err := Encode(state)
	require.NoError(t, err)
	decoded, err := e.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, state, decoded)
}
