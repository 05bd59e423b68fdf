package game

import (
	"encoding/json"
	"math/rand"

	"github.com/playtavola/backend/internal/models"
)

// TicTacToeState is a 3x3 board of player symbols (0 = empty).
type TicTacToeState struct {
	Board         [3][3]int `json:"board"`
	CurrentPlayer int       `json:"current_player"`
	Finished      bool      `json:"finished"`
	WinnerSymbol  int       `json:"winner,omitempty"`
}

// TicTacToeMove addresses a cell; row and col in {0,1,2}.
type TicTacToeMove struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s *TicTacToeState) IsFinished() bool { return s.Finished }
func (s *TicTacToeState) Winner() int      { return s.WinnerSymbol }

// TicTacToeEngine implements the Engine contract for tic-tac-toe.
type TicTacToeEngine struct{}

func (TicTacToeEngine) GameType() models.GameType { return models.GameTicTacToe }

func (TicTacToeEngine) InitialState(rng *rand.Rand) State {
	return &TicTacToeState{CurrentPlayer: Player1}
}

func (TicTacToeEngine) Decode(data []byte) (State, error) {
	var s TicTacToeState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (TicTacToeEngine) Apply(state State, player int, move json.RawMessage) (State, error) {
	s, ok := state.(*TicTacToeState)
	if !ok {
		return nil, ErrIllegalMove
	}
	if !validSymbol(player) {
		return nil, ErrInvalidPlayer
	}
	if s.Finished {
		return nil, ErrGameNotInProgress
	}
	if player != s.CurrentPlayer {
		return nil, ErrWrongTurn
	}

	var m TicTacToeMove
	if err := json.Unmarshal(move, &m); err != nil {
		return nil, ErrIllegalMove
	}
	if m.Row < 0 || m.Row > 2 || m.Col < 0 || m.Col > 2 {
		return nil, ErrIllegalMove
	}
	if s.Board[m.Row][m.Col] != 0 {
		return nil, ErrIllegalMove
	}

	next := *s
	next.Board[m.Row][m.Col] = player

	if winner := tttWinner(&next.Board); winner != 0 {
		next.Finished = true
		next.WinnerSymbol = winner
	} else if tttFull(&next.Board) {
		next.Finished = true
	} else {
		next.CurrentPlayer = otherPlayer(player)
	}
	return &next, nil
}

// Redact is the identity transform: both players see the whole board.
func (TicTacToeEngine) Redact(state State, viewer int) State {
	s := state.(*TicTacToeState)
	copied := *s
	return &copied
}

func tttWinner(b *[3][3]int) int {
	lines := [8][3][2]int{
		{{0, 0}, {0, 1}, {0, 2}},
		{{1, 0}, {1, 1}, {1, 2}},
		{{2, 0}, {2, 1}, {2, 2}},
		{{0, 0}, {1, 0}, {2, 0}},
		{{0, 1}, {1, 1}, {2, 1}},
		{{0, 2}, {1, 2}, {2, 2}},
		{{0, 0}, {1, 1}, {2, 2}},
		{{0, 2}, {1, 1}, {2, 0}},
	}
	for _, line := range lines {
		a, b2, c := b[line[0][0]][line[0][1]], b[line[1][0]][line[1][1]], b[line[2][0]][line[2][1]]
		if a != 0 && a == b2 && b2 == c {
			return a
		}
	}
	return 0
}

func tttFull(b *[3][3]int) bool {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if b[r][c] == 0 {
				return false
			}
		}
	}
	return true
}
