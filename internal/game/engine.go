package game

import (
	"encoding/json"
	"errors"
	"math/rand"

	"github.com/playtavola/backend/internal/models"
)

// Engine errors. Apply returns these untouched so the dispatcher can map them
// to error messages without leaking opponent information.
var (
	ErrIllegalMove       = errors.New("illegal move")
	ErrWrongTurn         = errors.New("not your turn")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrInvalidPlayer     = errors.New("invalid player")
	ErrUnknownGameType   = errors.New("unknown game type")
)

// Player symbols. Player 1 is always the match creator.
const (
	Player1 = 1
	Player2 = 2
)

// State is the engine-private game position. Engines only ever hand out
// copies; a State is never mutated in place.
type State interface {
	// IsFinished reports whether the game reached a terminal position.
	IsFinished() bool
	// Winner returns Player1 or Player2, or 0 while unfinished or drawn.
	Winner() int
}

// Engine is the pure rule core for one game type. All randomness is drawn
// from the explicit rng parameter; engines never touch the clock or global
// state, so Apply is a pure function of its inputs.
type Engine interface {
	// GameType names the engine.
	GameType() models.GameType
	// InitialState produces the opening position.
	InitialState(rng *rand.Rand) State
	// Decode parses a stored state blob back into the engine's state type.
	Decode(data []byte) (State, error)
	// Apply validates and plays a raw move payload for the given player
	// symbol, returning the successor state.
	Apply(state State, player int, move json.RawMessage) (State, error)
	// Redact returns a copy of state with information the viewer must not
	// see removed. Redacting an already redacted state is a no-op.
	Redact(state State, viewer int) State
}

// Encode serializes a state for storage or transport.
func Encode(state State) ([]byte, error) {
	return json.Marshal(state)
}

func validSymbol(player int) bool {
	return player == Player1 || player == Player2
}

func otherPlayer(player int) int {
	if player == Player1 {
		return Player2
	}
	return Player1
}
