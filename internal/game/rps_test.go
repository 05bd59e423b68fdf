package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rpsMove(t *testing.T, move string) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(RPSMove{Move: move})
	require.NoError(t, err)
	return data
}

func rpsPlayRound(t *testing.T, e RPSEngine, state State, move1, move2 string) State {
	t.Helper()
	next, err := e.Apply(state, Player1, rpsMove(t, move1))
	require.NoError(t, err)
	next, err = e.Apply(next, Player2, rpsMove(t, move2))
	require.NoError(t, err)
	return next
}

func TestRPSBestOfThreeWithTie(t *testing.T) {
	e := RPSEngine{}
	state := e.InitialState(nil)

	state = rpsPlayRound(t, e, state, MoveRock, MoveScissors)
	assert.False(t, state.IsFinished())

	// A tied round scores nothing and replays
	state = rpsPlayRound(t, e, state, MovePaper, MovePaper)
	s := state.(*RPSState)
	assert.Equal(t, 1, s.Wins1)
	assert.Equal(t, 0, s.Wins2)
	assert.False(t, state.IsFinished())

	state = rpsPlayRound(t, e, state, MoveScissors, MovePaper)
	assert.True(t, state.IsFinished())
	assert.Equal(t, Player1, state.Winner())

	_, err := e.Apply(state, Player2, rpsMove(t, MoveRock))
	assert.ErrorIs(t, err, ErrGameNotInProgress)
}

func TestRPSPlayer2CanWin(t *testing.T) {
	e := RPSEngine{}
	state := e.InitialState(nil)

	state = rpsPlayRound(t, e, state, MoveRock, MovePaper)
	state = rpsPlayRound(t, e, state, MoveScissors, MoveRock)
	assert.True(t, state.IsFinished())
	assert.Equal(t, Player2, state.Winner())
}

func TestRPSDoublePickIsWrongTurn(t *testing.T) {
	e := RPSEngine{}
	state, err := e.Apply(e.InitialState(nil), Player1, rpsMove(t, MoveRock))
	require.NoError(t, err)

	_, err = e.Apply(state, Player1, rpsMove(t, MovePaper))
	assert.ErrorIs(t, err, ErrWrongTurn)

	// The opponent can still complete the round
	state, err = e.Apply(state, Player2, rpsMove(t, MovePaper))
	require.NoError(t, err)
	assert.Equal(t, 1, state.(*RPSState).Wins2)
}

func TestRPSInvalidPick(t *testing.T) {
	e := RPSEngine{}
	state := e.InitialState(nil)

	_, err := e.Apply(state, Player1, rpsMove(t, "lizard"))
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = e.Apply(state, Player1, json.RawMessage(`{`))
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestRPSRedactionHidesOpenRound(t *testing.T) {
	e := RPSEngine{}
	state, err := e.Apply(e.InitialState(nil), Player1, rpsMove(t, MoveRock))
	require.NoError(t, err)

	// The mover sees their own pick
	own := e.Redact(state, Player1).(*RPSState)
	assert.Equal(t, MoveRock, own.Rounds[0].Move1)

	// The opponent sees only that a pick was made
	theirs := e.Redact(state, Player2).(*RPSState)
	assert.Equal(t, MoveRedacted, theirs.Rounds[0].Move1)

	// Redacting a redacted state changes nothing
	again := e.Redact(theirs, Player2).(*RPSState)
	assert.Equal(t, theirs, again)

	// The real state keeps the actual pick
	assert.Equal(t, MoveRock, state.(*RPSState).Rounds[0].Move1)
}

func TestRPSCompletedRoundsArePublic(t *testing.T) {
	e := RPSEngine{}
	state := rpsPlayRound(t, e, e.InitialState(nil), MoveRock, MoveScissors)

	view := e.Redact(state, Player2).(*RPSState)
	assert.Equal(t, MoveRock, view.Rounds[0].Move1)
	assert.Equal(t, MoveScissors, view.Rounds[0].Move2)
}
