package game

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/playtavola/backend/internal/models"
	"github.com/playtavola/backend/internal/repository"
)

// Outbound is one message addressed to one player.
type Outbound struct {
	PlayerID int
	Payload  map[string]interface{}
}

// Sink receives addressed messages for delivery. The matchmaker calls it while
// holding its lock, so a move's updates reach the sink before any later move
// on the same match is processed. Delivery must never block indefinitely.
type Sink interface {
	Fanout(msgs []Outbound)
}

// Matchmaker implements queueing, pairing, resume and disconnect semantics.
// A single mutex serializes every operation that mutates match state, so the
// find-or-create pairing step and the per-player active-match check share one
// critical section, and fan-out for a move completes inside it.
type Matchmaker struct {
	mu    sync.Mutex
	store *repository.Store
	disp  *Dispatcher
	sink  Sink
	rng   *rand.Rand
}

// NewMatchmaker builds a matchmaker over the store and dispatcher, delivering
// outbound messages through sink.
func NewMatchmaker(store *repository.Store, disp *Dispatcher, sink Sink) *Matchmaker {
	return &Matchmaker{
		store: store,
		disp:  disp,
		sink:  sink,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Join enters matchmaking for a game type. A player already in a match gets
// their current state back; otherwise the earliest waiting slot of the same
// type is claimed, or a new slot is opened.
func (mm *Matchmaker) Join(playerID int, gameType models.GameType) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if !gameType.Valid() {
		mm.errorTo(playerID, fmt.Sprintf("unknown game type %q", gameType))
		return nil
	}

	// A player has at most one in-progress match
	if active, err := mm.store.GetActiveMatchFor(playerID); err == nil {
		if active.IsWaiting() {
			mm.sink.Fanout([]Outbound{{PlayerID: playerID, Payload: map[string]interface{}{"type": "waiting_for_opponent"}}})
			return nil
		}
		view, err := mm.disp.ViewFor(active, playerID)
		if err != nil {
			return err
		}
		mm.sink.Fanout([]Outbound{stateUpdate(playerID, view)})
		return nil
	} else if err != repository.ErrNotFound {
		return err
	}

	waiting, err := mm.store.FindWaitingMatch(playerID, gameType)
	if err == repository.ErrNotFound {
		matchID, err := mm.store.CreateWaitingMatch(playerID, gameType)
		if err != nil {
			return err
		}
		log.Printf("[MATCHMAKER] Player %d waiting for %s (match %d)", playerID, gameType, matchID)
		mm.sink.Fanout([]Outbound{{PlayerID: playerID, Payload: map[string]interface{}{"type": "waiting_for_opponent"}}})
		return nil
	}
	if err != nil {
		return err
	}

	// Pair: the waiting player stays player1, the joiner becomes player2
	initial, err := mm.disp.InitialState(gameType, mm.rng)
	if err != nil {
		return err
	}
	if err := mm.store.JoinWaitingMatch(waiting.ID, playerID, initial); err != nil {
		return err
	}
	match, err := mm.store.GetMatch(waiting.ID)
	if err != nil {
		return err
	}
	log.Printf("[MATCHMAKER] Match %d paired: players=[%d,%d] type=%s", match.ID, match.Player1ID, playerID, gameType)

	msgs := make([]Outbound, 0, 2)
	for _, pid := range []int{match.Player1ID, playerID} {
		view, err := mm.disp.ViewFor(match, pid)
		if err != nil {
			return err
		}
		msgs = append(msgs, Outbound{PlayerID: pid, Payload: map[string]interface{}{
			"type":       "match_found",
			"match_data": view,
		}})
	}
	mm.sink.Fanout(msgs)
	return nil
}

// Resume re-syncs both participants of a match a player reconnected to.
func (mm *Matchmaker) Resume(playerID, matchID int) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	match, err := mm.store.GetMatch(matchID)
	if err == repository.ErrNotFound {
		mm.errorTo(playerID, "match no longer exists")
		return nil
	}
	if err != nil {
		return err
	}
	if !match.InProgress || !match.HasParticipant(playerID) {
		mm.errorTo(playerID, "match is not in progress")
		return nil
	}

	log.Printf("[MATCHMAKER] Player %d resumed match %d", playerID, matchID)
	return mm.fanoutStateForBoth(match)
}

// MakeMove plays one move in the caller's active match. Engine rejections go
// back to the caller only; valid moves are persisted and fanned out before the
// lock is released, with scoring applied when the move ends the match.
func (mm *Matchmaker) MakeMove(playerID int, move json.RawMessage) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	match, err := mm.store.GetActiveMatchFor(playerID)
	if err == repository.ErrNotFound {
		mm.errorTo(playerID, "no active match")
		return nil
	}
	if err != nil {
		return err
	}

	result, err := mm.disp.ApplyMove(match, playerID, move)
	if err != nil {
		switch err {
		case ErrIllegalMove, ErrWrongTurn, ErrGameNotInProgress, ErrInvalidPlayer:
			mm.errorTo(playerID, err.Error())
			return nil
		}
		return err
	}

	reason := models.EndReasonEnded
	if err := mm.store.UpdateMatch(match.ID, result.NewState, !result.Finished, result.Outcome, reason); err != nil {
		return err
	}

	match.GameState = result.NewState
	if result.Finished {
		match.InProgress = false
		match.Outcome.Valid = true
		match.Outcome.String = string(result.Outcome)
		match.EndReason.Valid = true
		match.EndReason.String = string(reason)

		if err := mm.store.ApplyScoreDelta(match); err != nil {
			log.Printf("[MATCHMAKER] Score delta failed for match %d: %v", match.ID, err)
		}
	}

	if err := mm.fanoutStateForBoth(match); err != nil {
		return err
	}
	if result.Finished {
		log.Printf("[MATCHMAKER] Match %d ended: outcome=%s", match.ID, result.Outcome)
		msgs := make([]Outbound, 0, 2)
		for _, pid := range participants(match) {
			msgs = append(msgs, Outbound{PlayerID: pid, Payload: map[string]interface{}{
				"type":   "match_ended",
				"reason": string(models.EndReasonEnded),
			}})
		}
		mm.sink.Fanout(msgs)
	}
	return nil
}

// Disconnect handles an authenticated connection dropping. Waiting slots are
// deleted silently; an in-progress match notifies the opponent and reports
// the match id so the caller can arm the grace timer.
func (mm *Matchmaker) Disconnect(playerID int) (int, error) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	match, err := mm.store.GetActiveMatchFor(playerID)
	if err == repository.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if match.IsWaiting() {
		log.Printf("[MATCHMAKER] Player %d left the queue (match %d deleted)", playerID, match.ID)
		return 0, mm.store.DeleteMatch(match.ID)
	}

	opponent := match.OpponentOf(playerID)
	log.Printf("[MATCHMAKER] Player %d disconnected mid-match %d; grace timer due", playerID, match.ID)
	mm.sink.Fanout([]Outbound{{PlayerID: opponent, Payload: map[string]interface{}{
		"type":      "player_disconnected",
		"player_id": playerID,
	}}})
	return match.ID, nil
}

// DisconnectTimeout finalizes a match whose grace timer expired. The match is
// recorded as a forfeit draw; if it already ended this is a no-op.
func (mm *Matchmaker) DisconnectTimeout(playerID, matchID int) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	match, err := mm.store.GetMatch(matchID)
	if err == repository.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if !match.InProgress {
		return nil
	}

	if err := mm.store.UpdateMatch(match.ID, match.GameState, false, models.OutcomeDraw, models.EndReasonDisconnection); err != nil {
		if err == repository.ErrMatchFinished {
			return nil
		}
		return err
	}

	match.InProgress = false
	match.Outcome.Valid = true
	match.Outcome.String = string(models.OutcomeDraw)
	match.EndReason.Valid = true
	match.EndReason.String = string(models.EndReasonDisconnection)
	if err := mm.store.ApplyScoreDelta(match); err != nil {
		log.Printf("[MATCHMAKER] Score delta failed for match %d: %v", match.ID, err)
	}

	log.Printf("[MATCHMAKER] Match %d forfeited after disconnect grace (player %d)", match.ID, playerID)
	opponent := match.OpponentOf(playerID)
	mm.sink.Fanout([]Outbound{{PlayerID: opponent, Payload: map[string]interface{}{
		"type":   "match_ended",
		"reason": string(models.EndReasonDisconnection),
	}}})
	return nil
}

// MatchViewFor builds the redacted view of a match for one participant, used
// by the realtime endpoint to replay a resumable match after authentication.
func (mm *Matchmaker) MatchViewFor(playerID, matchID int) (*MatchView, error) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	match, err := mm.store.GetMatch(matchID)
	if err != nil {
		return nil, err
	}
	if !match.InProgress {
		return nil, ErrGameNotInProgress
	}
	return mm.disp.ViewFor(match, playerID)
}

func (mm *Matchmaker) fanoutStateForBoth(match *models.Match) error {
	msgs := make([]Outbound, 0, 2)
	for _, pid := range participants(match) {
		view, err := mm.disp.ViewFor(match, pid)
		if err != nil {
			return err
		}
		msgs = append(msgs, stateUpdate(pid, view))
	}
	mm.sink.Fanout(msgs)
	return nil
}

func (mm *Matchmaker) errorTo(playerID int, message string) {
	mm.sink.Fanout([]Outbound{{PlayerID: playerID, Payload: map[string]interface{}{
		"type":    "error",
		"message": message,
	}}})
}

func participants(m *models.Match) []int {
	ids := []int{m.Player1ID}
	if m.Player2ID.Valid {
		ids = append(ids, int(m.Player2ID.Int64))
	}
	return ids
}

func stateUpdate(playerID int, view *MatchView) Outbound {
	return Outbound{PlayerID: playerID, Payload: map[string]interface{}{
		"type":       "game_state_update",
		"match_data": view,
	}}
}
