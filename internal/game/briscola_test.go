package game

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func briscolaMove(t *testing.T, suit Suit, rank Rank) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(BriscolaMove{Suit: suit, Rank: rank})
	require.NoError(t, err)
	return data
}

func TestBriscolaDeal(t *testing.T) {
	e := BriscolaEngine{}
	s := e.InitialState(rand.New(rand.NewSource(7))).(*BriscolaState)

	assert.Len(t, s.Hand1, 3)
	assert.Len(t, s.Hand2, 3)
	assert.Len(t, s.Deck, 33)
	require.NotNil(t, s.Trump)
	assert.Equal(t, s.Trump.Suit, s.TrumpSuit)
	assert.Equal(t, Player1, s.CurrentPlayer)
	assert.Equal(t, Player1, s.Leader)

	// All 40 cards are dealt exactly once
	seen := map[BriscolaCard]bool{*s.Trump: true}
	for _, group := range [][]BriscolaCard{s.Hand1, s.Hand2, s.Deck} {
		for _, c := range group {
			assert.False(t, seen[c], "card %v dealt twice", c)
			seen[c] = true
		}
	}
	assert.Len(t, seen, 40)
}

func TestBriscolaDealIsDeterministic(t *testing.T) {
	e := BriscolaEngine{}
	a, err := Encode(e.InitialState(rand.New(rand.NewSource(42))))
	require.NoError(t, err)
	b, err := Encode(e.InitialState(rand.New(rand.NewSource(42))))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBriscolaHigherRankWinsTrick(t *testing.T) {
	e := BriscolaEngine{}
	s := &BriscolaState{
		Hand1:         []BriscolaCard{{Suit: Denari, Rank: RankAce}},
		Hand2:         []BriscolaCard{{Suit: Denari, Rank: RankThree}},
		TrumpSuit:     Spade,
		Table:         []BriscolaCard{},
		Pile1:         []BriscolaCard{},
		Pile2:         []BriscolaCard{},
		CurrentPlayer: Player1,
		Leader:        Player1,
	}

	next, err := e.Apply(s, Player1, briscolaMove(t, Denari, RankAce))
	require.NoError(t, err)
	next, err = e.Apply(next, Player2, briscolaMove(t, Denari, RankThree))
	require.NoError(t, err)

	final := next.(*BriscolaState)
	assert.Len(t, final.Pile1, 2)
	assert.Empty(t, final.Pile2)
	assert.True(t, final.IsFinished())
	// Ace (11) + Three (10) all in pile1
	assert.Equal(t, Player1, final.Winner())
}

func TestBriscolaTrumpBeatsLead(t *testing.T) {
	e := BriscolaEngine{}
	s := &BriscolaState{
		Hand1:         []BriscolaCard{{Suit: Denari, Rank: RankAce}},
		Hand2:         []BriscolaCard{{Suit: Spade, Rank: RankTwo}},
		TrumpSuit:     Spade,
		Table:         []BriscolaCard{},
		Pile1:         []BriscolaCard{},
		Pile2:         []BriscolaCard{},
		CurrentPlayer: Player1,
		Leader:        Player1,
	}

	next, err := e.Apply(s, Player1, briscolaMove(t, Denari, RankAce))
	require.NoError(t, err)
	next, err = e.Apply(next, Player2, briscolaMove(t, Spade, RankTwo))
	require.NoError(t, err)

	final := next.(*BriscolaState)
	assert.Len(t, final.Pile2, 2)
	assert.Equal(t, Player2, final.Winner())
}

func TestBriscolaOffSuitWithoutTrumpLosesTrick(t *testing.T) {
	e := BriscolaEngine{}
	s := &BriscolaState{
		Hand1:         []BriscolaCard{{Suit: Denari, Rank: RankTwo}},
		Hand2:         []BriscolaCard{{Suit: Coppe, Rank: RankAce}},
		TrumpSuit:     Spade,
		Table:         []BriscolaCard{},
		Pile1:         []BriscolaCard{},
		Pile2:         []BriscolaCard{},
		CurrentPlayer: Player1,
		Leader:        Player1,
	}

	next, err := e.Apply(s, Player1, briscolaMove(t, Denari, RankTwo))
	require.NoError(t, err)
	next, err = e.Apply(next, Player2, briscolaMove(t, Coppe, RankAce))
	require.NoError(t, err)

	// Led card wins even against a higher off-suit card
	assert.Len(t, next.(*BriscolaState).Pile1, 2)
}

func TestBriscolaTrickWinnerDrawsFirstAndTrumpIsLastDraw(t *testing.T) {
	e := BriscolaEngine{}
	trump := BriscolaCard{Suit: Spade, Rank: RankFour}
	s := &BriscolaState{
		Hand1:         []BriscolaCard{{Suit: Denari, Rank: RankAce}, {Suit: Coppe, Rank: RankTwo}},
		Hand2:         []BriscolaCard{{Suit: Denari, Rank: RankThree}, {Suit: Coppe, Rank: RankFour}},
		Deck:          []BriscolaCard{{Suit: Bastoni, Rank: RankSeven}},
		Trump:         &trump,
		TrumpSuit:     Spade,
		Table:         []BriscolaCard{},
		Pile1:         []BriscolaCard{},
		Pile2:         []BriscolaCard{},
		CurrentPlayer: Player1,
		Leader:        Player1,
	}

	next, err := e.Apply(s, Player1, briscolaMove(t, Denari, RankAce))
	require.NoError(t, err)
	next, err = e.Apply(next, Player2, briscolaMove(t, Denari, RankThree))
	require.NoError(t, err)

	final := next.(*BriscolaState)
	// Player 1 won the trick and drew the last stock card; player 2 drew the trump
	assert.Contains(t, final.Hand1, BriscolaCard{Suit: Bastoni, Rank: RankSeven})
	assert.Contains(t, final.Hand2, trump)
	assert.Nil(t, final.Trump)
	assert.Empty(t, final.Deck)
	assert.Equal(t, Player1, final.CurrentPlayer)
	assert.Equal(t, Player1, final.Leader)
	assert.False(t, final.IsFinished())
}

func TestBriscolaRejectsCardNotInHand(t *testing.T) {
	e := BriscolaEngine{}
	s := e.InitialState(rand.New(rand.NewSource(1))).(*BriscolaState)

	// Find a card player 1 does not hold
	held := map[BriscolaCard]bool{}
	for _, c := range s.Hand1 {
		held[c] = true
	}
	var missing BriscolaCard
	for _, c := range newBriscolaDeck() {
		if !held[c] {
			missing = c
			break
		}
	}

	_, err := e.Apply(s, Player1, briscolaMove(t, missing.Suit, missing.Rank))
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestBriscolaTurnOrder(t *testing.T) {
	e := BriscolaEngine{}
	s := e.InitialState(rand.New(rand.NewSource(1))).(*BriscolaState)

	_, err := e.Apply(s, Player2, briscolaMove(t, s.Hand2[0].Suit, s.Hand2[0].Rank))
	assert.ErrorIs(t, err, ErrWrongTurn)
}

func TestBriscolaRedaction(t *testing.T) {
	e := BriscolaEngine{}
	s := e.InitialState(rand.New(rand.NewSource(3))).(*BriscolaState)

	view := e.Redact(s, Player1).(*BriscolaState)

	assert.Equal(t, s.Hand1, view.Hand1)
	assert.Len(t, view.Hand2, len(s.Hand2))
	for _, c := range view.Hand2 {
		assert.True(t, c.Hidden())
	}
	assert.Len(t, view.Deck, len(s.Deck))
	for _, c := range view.Deck {
		assert.True(t, c.Hidden())
	}
	// The revealed trump stays public
	require.NotNil(t, view.Trump)
	assert.False(t, view.Trump.Hidden())
	assert.Equal(t, s.TrumpSuit, view.TrumpSuit)

	// The real state is untouched
	for _, c := range s.Hand2 {
		assert.False(t, c.Hidden())
	}
}

func TestBriscolaPointValues(t *testing.T) {
	total := 0
	for _, c := range newBriscolaDeck() {
		total += c.PointValue()
	}
	assert.Equal(t, 120, total)
}
