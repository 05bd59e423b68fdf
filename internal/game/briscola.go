package game

import (
	"encoding/json"
	"math/rand"

	"github.com/playtavola/backend/internal/models"
)

// Suit represents an Italian card suit
type Suit string

const (
	Denari  Suit = "Denari"
	Coppe   Suit = "Coppe"
	Spade   Suit = "Spade"
	Bastoni Suit = "Bastoni"
)

// Rank represents an Italian card rank
type Rank string

const (
	RankAce    Rank = "A"
	RankTwo    Rank = "2"
	RankThree  Rank = "3"
	RankFour   Rank = "4"
	RankFive   Rank = "5"
	RankSix    Rank = "6"
	RankSeven  Rank = "7"
	RankJack   Rank = "J"
	RankKnight Rank = "C"
	RankKing   Rank = "K"
)

// hiddenSuit/hiddenRank mark cards redacted from a viewer's copy of the state.
const (
	hiddenSuit Suit = "hidden"
	hiddenRank Rank = "hidden"
)

// BriscolaCard is one of the 40 cards.
type BriscolaCard struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// Hidden reports whether the card was redacted.
func (c BriscolaCard) Hidden() bool {
	return c.Suit == hiddenSuit
}

// PointValue returns the captured-point value of the card.
func (c BriscolaCard) PointValue() int {
	switch c.Rank {
	case RankAce:
		return 11
	case RankThree:
		return 10
	case RankKing:
		return 4
	case RankKnight:
		return 3
	case RankJack:
		return 2
	default:
		return 0
	}
}

// strength orders ranks within a suit: Ace > Three > King > Knight > Jack >
// Seven > Six > Five > Four > Two.
func (c BriscolaCard) strength() int {
	switch c.Rank {
	case RankAce:
		return 10
	case RankThree:
		return 9
	case RankKing:
		return 8
	case RankKnight:
		return 7
	case RankJack:
		return 6
	case RankSeven:
		return 5
	case RankSix:
		return 4
	case RankFive:
		return 3
	case RankFour:
		return 2
	case RankTwo:
		return 1
	}
	return 0
}

// newBriscolaDeck builds the ordered 40-card deck.
func newBriscolaDeck() []BriscolaCard {
	suits := []Suit{Denari, Coppe, Spade, Bastoni}
	ranks := []Rank{RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven, RankJack, RankKnight, RankKing}

	cards := make([]BriscolaCard, 0, 40)
	for _, suit := range suits {
		for _, rank := range ranks {
			cards = append(cards, BriscolaCard{Suit: suit, Rank: rank})
		}
	}
	return cards
}

// BriscolaState holds the full deal. Hands, deck and the trump slot always
// account for all 40 cards together with the piles and the table.
type BriscolaState struct {
	Hand1         []BriscolaCard `json:"hand1"`
	Hand2         []BriscolaCard `json:"hand2"`
	Deck          []BriscolaCard `json:"deck"`
	Trump         *BriscolaCard  `json:"trump,omitempty"`
	TrumpSuit     Suit           `json:"trump_suit"`
	Table         []BriscolaCard `json:"table"`
	Pile1         []BriscolaCard `json:"pile1"`
	Pile2         []BriscolaCard `json:"pile2"`
	CurrentPlayer int            `json:"current_player"`
	Leader        int            `json:"leader"`
}

// BriscolaMove plays a named card from the mover's hand.
type BriscolaMove struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (s *BriscolaState) IsFinished() bool {
	return len(s.Hand1) == 0 && len(s.Hand2) == 0 && len(s.Deck) == 0 && s.Trump == nil && len(s.Table) == 0
}

func (s *BriscolaState) Winner() int {
	if !s.IsFinished() {
		return 0
	}
	p1, p2 := pilePoints(s.Pile1), pilePoints(s.Pile2)
	if p1 > p2 {
		return Player1
	}
	if p2 > p1 {
		return Player2
	}
	return 0
}

func pilePoints(pile []BriscolaCard) int {
	total := 0
	for _, c := range pile {
		total += c.PointValue()
	}
	return total
}

// BriscolaEngine implements the Engine contract for two-player briscola.
type BriscolaEngine struct{}

func (BriscolaEngine) GameType() models.GameType { return models.GameBriscola }

// InitialState shuffles with the supplied rng, deals three cards each and
// reveals the trump; the rest of the deck becomes the stock.
func (BriscolaEngine) InitialState(rng *rand.Rand) State {
	deck := newBriscolaDeck()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	s := &BriscolaState{
		Hand1:         append([]BriscolaCard(nil), deck[0:3]...),
		Hand2:         append([]BriscolaCard(nil), deck[3:6]...),
		Table:         []BriscolaCard{},
		Pile1:         []BriscolaCard{},
		Pile2:         []BriscolaCard{},
		CurrentPlayer: Player1,
		Leader:        Player1,
	}
	trump := deck[6]
	s.Trump = &trump
	s.TrumpSuit = trump.Suit
	s.Deck = append([]BriscolaCard(nil), deck[7:]...)
	return s
}

func (BriscolaEngine) Decode(data []byte) (State, error) {
	var s BriscolaState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (BriscolaEngine) Apply(state State, player int, move json.RawMessage) (State, error) {
	s, ok := state.(*BriscolaState)
	if !ok {
		return nil, ErrIllegalMove
	}
	if !validSymbol(player) {
		return nil, ErrInvalidPlayer
	}
	if s.IsFinished() {
		return nil, ErrGameNotInProgress
	}
	if player != s.CurrentPlayer {
		return nil, ErrWrongTurn
	}

	var m BriscolaMove
	if err := json.Unmarshal(move, &m); err != nil {
		return nil, ErrIllegalMove
	}
	card := BriscolaCard{Suit: m.Suit, Rank: m.Rank}

	next := s.clone()
	hand := next.handOf(player)
	idx := indexOfCard(*hand, card)
	if idx < 0 {
		return nil, ErrIllegalMove
	}

	// Play the card
	*hand = append((*hand)[:idx], (*hand)[idx+1:]...)
	next.Table = append(next.Table, card)

	if len(next.Table) < 2 {
		next.CurrentPlayer = otherPlayer(player)
		return next, nil
	}

	// Trick complete: the second card was just played by CurrentPlayer, the
	// first by the trick leader.
	follower := next.CurrentPlayer
	winner := next.Leader
	if followerWinsTrick(next.Table[0], next.Table[1], next.TrumpSuit) {
		winner = follower
	}

	pile := next.pileOf(winner)
	*pile = append(*pile, next.Table...)
	next.Table = []BriscolaCard{}

	// Winner draws first, then the loser; the trump card is the final draw.
	next.draw(winner)
	next.draw(otherPlayer(winner))

	next.CurrentPlayer = winner
	next.Leader = winner
	return next, nil
}

// Redact hides the opponent's hand and the stock order. Counts are preserved
// so a viewer still sees how many cards remain everywhere.
func (BriscolaEngine) Redact(state State, viewer int) State {
	s := state.(*BriscolaState)
	copied := s.clone()

	hidden := BriscolaCard{Suit: hiddenSuit, Rank: hiddenRank}
	opp := copied.handOf(otherPlayer(viewer))
	for i := range *opp {
		(*opp)[i] = hidden
	}
	for i := range copied.Deck {
		copied.Deck[i] = hidden
	}
	return copied
}

func (s *BriscolaState) clone() *BriscolaState {
	copied := *s
	copied.Hand1 = append([]BriscolaCard(nil), s.Hand1...)
	copied.Hand2 = append([]BriscolaCard(nil), s.Hand2...)
	copied.Deck = append([]BriscolaCard(nil), s.Deck...)
	copied.Table = append([]BriscolaCard(nil), s.Table...)
	copied.Pile1 = append([]BriscolaCard(nil), s.Pile1...)
	copied.Pile2 = append([]BriscolaCard(nil), s.Pile2...)
	if s.Trump != nil {
		trump := *s.Trump
		copied.Trump = &trump
	}
	return &copied
}

func (s *BriscolaState) handOf(player int) *[]BriscolaCard {
	if player == Player1 {
		return &s.Hand1
	}
	return &s.Hand2
}

func (s *BriscolaState) pileOf(player int) *[]BriscolaCard {
	if player == Player1 {
		return &s.Pile1
	}
	return &s.Pile2
}

// draw moves the top stock card into the player's hand; once the stock is
// empty the revealed trump is drawn as the last card.
func (s *BriscolaState) draw(player int) {
	hand := s.handOf(player)
	if len(s.Deck) > 0 {
		*hand = append(*hand, s.Deck[0])
		s.Deck = s.Deck[1:]
		return
	}
	if s.Trump != nil {
		*hand = append(*hand, *s.Trump)
		s.Trump = nil
	}
}

// followerWinsTrick decides a trick: trump beats non-trump, same suit goes to
// the higher rank, otherwise the led card wins.
func followerWinsTrick(lead, follow BriscolaCard, trump Suit) bool {
	if lead.Suit == follow.Suit {
		return follow.strength() > lead.strength()
	}
	return follow.Suit == trump
}

func indexOfCard(hand []BriscolaCard, card BriscolaCard) int {
	for i, c := range hand {
		if c == card {
			return i
		}
	}
	return -1
}
