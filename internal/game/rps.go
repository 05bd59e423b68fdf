package game

import (
	"encoding/json"
	"math/rand"

	"github.com/playtavola/backend/internal/models"
)

// RPS move values on the wire. MoveRedacted is what the opponent sees while a
// round is still open.
const (
	MoveRock     = "rock"
	MovePaper    = "paper"
	MoveScissors = "scissors"
	MoveRedacted = "redacted"
)

// roundsToWin ends the match at two round wins; ties replay without scoring.
const roundsToWin = 2

// RPSRound is one simultaneous pick. Empty string means not yet played.
type RPSRound struct {
	Move1 string `json:"move1,omitempty"`
	Move2 string `json:"move2,omitempty"`
}

func (r *RPSRound) complete() bool {
	return r.Move1 != "" && r.Move2 != ""
}

// winner scores a completed round by the canonical cycle; 0 on a tie.
func (r *RPSRound) winner() int {
	if r.Move1 == r.Move2 {
		return 0
	}
	if beats(r.Move1, r.Move2) {
		return Player1
	}
	return Player2
}

func beats(a, b string) bool {
	return (a == MoveRock && b == MoveScissors) ||
		(a == MoveScissors && b == MovePaper) ||
		(a == MovePaper && b == MoveRock)
}

// RPSState is the full round history plus running win counts.
type RPSState struct {
	Rounds []RPSRound `json:"rounds"`
	Wins1  int        `json:"wins1"`
	Wins2  int        `json:"wins2"`
}

// RPSMove is the client payload for one pick.
type RPSMove struct {
	Move string `json:"move"`
}

func (s *RPSState) IsFinished() bool {
	return s.Wins1 >= roundsToWin || s.Wins2 >= roundsToWin
}

func (s *RPSState) Winner() int {
	if s.Wins1 >= roundsToWin {
		return Player1
	}
	if s.Wins2 >= roundsToWin {
		return Player2
	}
	return 0
}

// RPSEngine implements the Engine contract for rock-paper-scissors.
type RPSEngine struct{}

func (RPSEngine) GameType() models.GameType { return models.GameRockPaperScissors }

func (RPSEngine) InitialState(rng *rand.Rand) State {
	return &RPSState{Rounds: []RPSRound{{}}}
}

func (RPSEngine) Decode(data []byte) (State, error) {
	var s RPSState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (RPSEngine) Apply(state State, player int, move json.RawMessage) (State, error) {
	s, ok := state.(*RPSState)
	if !ok {
		return nil, ErrIllegalMove
	}
	if !validSymbol(player) {
		return nil, ErrInvalidPlayer
	}
	if s.IsFinished() {
		return nil, ErrGameNotInProgress
	}

	var m RPSMove
	if err := json.Unmarshal(move, &m); err != nil {
		return nil, ErrIllegalMove
	}
	if m.Move != MoveRock && m.Move != MovePaper && m.Move != MoveScissors {
		return nil, ErrIllegalMove
	}

	next := *s
	next.Rounds = append([]RPSRound(nil), s.Rounds...)
	cur := &next.Rounds[len(next.Rounds)-1]

	// Both picks land in the open round; playing twice is a wrong-turn error.
	if player == Player1 {
		if cur.Move1 != "" {
			return nil, ErrWrongTurn
		}
		cur.Move1 = m.Move
	} else {
		if cur.Move2 != "" {
			return nil, ErrWrongTurn
		}
		cur.Move2 = m.Move
	}

	if cur.complete() {
		switch cur.winner() {
		case Player1:
			next.Wins1++
		case Player2:
			next.Wins2++
		}
		if !next.IsFinished() {
			next.Rounds = append(next.Rounds, RPSRound{})
		}
	}
	return &next, nil
}

// Redact hides the opponent's pick in the still-open round. Completed rounds
// are public.
func (RPSEngine) Redact(state State, viewer int) State {
	s := state.(*RPSState)
	copied := *s
	copied.Rounds = append([]RPSRound(nil), s.Rounds...)

	if len(copied.Rounds) > 0 {
		cur := &copied.Rounds[len(copied.Rounds)-1]
		if !cur.complete() {
			if viewer == Player1 && cur.Move2 != "" {
				cur.Move2 = MoveRedacted
			}
			if viewer == Player2 && cur.Move1 != "" {
				cur.Move1 = MoveRedacted
			}
		}
	}
	return &copied
}
