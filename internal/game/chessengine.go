package game

import (
	"encoding/json"
	"math/rand"

	"github.com/notnil/chess"
	"github.com/playtavola/backend/internal/models"
)

// ChessState carries the position as FEN plus the UCI move history. Player 1
// is always white.
type ChessState struct {
	FEN          string   `json:"fen"`
	Moves        []string `json:"moves"`
	Finished     bool     `json:"finished"`
	WinnerSymbol int      `json:"winner,omitempty"`
	Method       string   `json:"method,omitempty"`
}

// ChessMove is a move in UCI notation, e.g. "e2e4" or "e7e8q" for promotion.
type ChessMove struct {
	UCI string `json:"uci"`
}

func (s *ChessState) IsFinished() bool { return s.Finished }
func (s *ChessState) Winner() int      { return s.WinnerSymbol }

// ChessEngine implements the Engine contract on top of notnil/chess, which
// validates piece movement, check, checkmate and stalemate (plus castling,
// en passant and promotion).
type ChessEngine struct{}

func (ChessEngine) GameType() models.GameType { return models.GameChess }

func (ChessEngine) InitialState(rng *rand.Rand) State {
	return &ChessState{
		FEN:   chess.NewGame().Position().String(),
		Moves: []string{},
	}
}

func (ChessEngine) Decode(data []byte) (State, error) {
	var s ChessState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (ChessEngine) Apply(state State, player int, move json.RawMessage) (State, error) {
	s, ok := state.(*ChessState)
	if !ok {
		return nil, ErrIllegalMove
	}
	if !validSymbol(player) {
		return nil, ErrInvalidPlayer
	}
	if s.Finished {
		return nil, ErrGameNotInProgress
	}

	fenOpt, err := chess.FEN(s.FEN)
	if err != nil {
		return nil, ErrIllegalMove
	}
	g := chess.NewGame(fenOpt)

	turn := Player1
	if g.Position().Turn() == chess.Black {
		turn = Player2
	}
	if player != turn {
		return nil, ErrWrongTurn
	}

	var m ChessMove
	if err := json.Unmarshal(move, &m); err != nil {
		return nil, ErrIllegalMove
	}
	parsed, err := chess.UCINotation{}.Decode(g.Position(), m.UCI)
	if err != nil {
		return nil, ErrIllegalMove
	}
	if err := g.Move(parsed); err != nil {
		return nil, ErrIllegalMove
	}

	next := &ChessState{
		FEN:   g.Position().String(),
		Moves: append(append([]string(nil), s.Moves...), m.UCI),
	}
	switch g.Outcome() {
	case chess.WhiteWon:
		next.Finished = true
		next.WinnerSymbol = Player1
		next.Method = g.Method().String()
	case chess.BlackWon:
		next.Finished = true
		next.WinnerSymbol = Player2
		next.Method = g.Method().String()
	case chess.Draw:
		next.Finished = true
		next.Method = g.Method().String()
	}
	return next, nil
}

// Redact is the identity transform: chess has no hidden information.
func (ChessEngine) Redact(state State, viewer int) State {
	s := state.(*ChessState)
	copied := *s
	copied.Moves = append([]string(nil), s.Moves...)
	return &copied
}
