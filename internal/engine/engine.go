// Package engine holds the battle state machine as a pure function over
// session values. Apply never touches storage: the caller reads a session,
// applies a command, and writes the result back under a version check.
package engine

import (
	"time"

	"github.com/footycards/attax-backend/internal/catalog"
	"github.com/footycards/attax-backend/internal/gameerr"
)

type CommandType string

const (
	CmdJoin         CommandType = "Join"
	CmdSubmitLineup CommandType = "SubmitLineup"
	CmdPlayCard     CommandType = "PlayCard"
	CmdForfeit      CommandType = "Forfeit"
	CmdClaimPayout  CommandType = "ClaimPayout"
	CmdSetConnected CommandType = "SetConnected"
)

type Command struct {
	Type        CommandType
	AccountID   string
	DisplayName string
	CardIDs     []string
	CardID      string
	Stat        catalog.Stat
	// Owned backs lineup validation; filled by the caller from the ledger.
	Owned     map[string]bool
	Connected bool
}

type EventType string

const (
	EvtPlayerJoined   EventType = "PlayerJoined"
	EvtLineupLocked   EventType = "LineupLocked"
	EvtBattleStarted  EventType = "BattleStarted"
	EvtRoundOpened    EventType = "RoundOpened"
	EvtRoundResolved  EventType = "RoundResolved"
	EvtBattleFinished EventType = "BattleFinished"
	EvtPayoutClaimed  EventType = "PayoutClaimed"
)

type Event struct {
	Type  EventType
	Slot  SlotID
	Round int
}

// Engine applies commands against an injected read-only catalog.
type Engine struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Engine {
	return &Engine{catalog: cat}
}

// Apply validates cmd against s and returns the resulting session. The input
// session is never mutated; on error it is returned unchanged.
func (e *Engine) Apply(s Session, cmd Command, now time.Time) ([]Event, Session, error) {
	switch cmd.Type {
	case CmdJoin:
		return e.join(s, cmd, now)
	case CmdSubmitLineup:
		return e.submitLineup(s, cmd, now)
	case CmdPlayCard:
		return e.playCard(s, cmd, now)
	case CmdForfeit:
		return e.forfeit(s, cmd, now)
	case CmdClaimPayout:
		return e.claimPayout(s, cmd, now)
	case CmdSetConnected:
		return e.setConnected(s, cmd, now)
	default:
		return nil, s, gameerr.Newf(gameerr.CodeUnknown, "unsupported command %q", cmd.Type)
	}
}

func (e *Engine) join(s Session, cmd Command, now time.Time) ([]Event, Session, error) {
	if s.Status != StatusWaiting {
		return nil, s, gameerr.New(gameerr.CodeAlreadyStarted, "Game already in progress.")
	}
	if s.Player1.AccountID == cmd.AccountID {
		return nil, s, gameerr.New(gameerr.CodeSelfJoin, "You cannot join your own game!")
	}

	ns := s.Clone()
	ns.Player2 = &Slot{
		AccountID:   cmd.AccountID,
		DisplayName: cmd.DisplayName,
		Lineup:      []string{},
		PlayedCards: []string{},
		Connected:   true,
		LastSeen:    now,
	}
	ns.Status = StatusSelecting
	ns.TurnDeadline = now.Add(TurnTimeout)
	ns.UpdatedAt = now

	return []Event{{Type: EvtPlayerJoined, Slot: Slot2}}, ns, nil
}

func (e *Engine) submitLineup(s Session, cmd Command, now time.Time) ([]Event, Session, error) {
	if s.Status != StatusSelecting {
		return nil, s, gameerr.New(gameerr.CodeWrongPhase, "Not in card selection phase.")
	}
	slotID, ok := s.SlotOf(cmd.AccountID)
	if !ok {
		return nil, s, gameerr.New(gameerr.CodeNotInGame, "You are not in this game.")
	}
	if len(cmd.CardIDs) != LineupSize {
		return nil, s, gameerr.Newf(gameerr.CodeBadLineupSize, "Must select exactly %d cards.", LineupSize)
	}
	seen := make(map[string]bool, len(cmd.CardIDs))
	for _, id := range cmd.CardIDs {
		if _, exists := e.catalog.Get(id); !exists {
			return nil, s, gameerr.Newf(gameerr.CodeCardNotFound, "Unknown card %s.", id)
		}
		if cmd.Owned != nil && !cmd.Owned[id] {
			return nil, s, gameerr.Newf(gameerr.CodeInvalidCard, "You do not own card %s.", id)
		}
		if seen[id] {
			return nil, s, gameerr.Newf(gameerr.CodeInvalidCard, "Card %s selected twice.", id)
		}
		seen[id] = true
	}

	ns := s.Clone()
	slot := ns.slot(slotID)
	slot.Lineup = append([]string{}, cmd.CardIDs...)
	slot.Ready = true
	ns.UpdatedAt = now

	events := []Event{{Type: EvtLineupLocked, Slot: slotID}}

	if ns.Player1.Ready && ns.Player2 != nil && ns.Player2.Ready {
		ns.Status = StatusPlaying
		ns.CurrentRound = 1
		ns.CurrentTurn = Slot1
		ns.TurnDeadline = now.Add(TurnTimeout)
		events = append(events, Event{Type: EvtBattleStarted})
	}
	return events, ns, nil
}

func (e *Engine) playCard(s Session, cmd Command, now time.Time) ([]Event, Session, error) {
	if s.Status != StatusPlaying {
		return nil, s, gameerr.New(gameerr.CodeWrongPhase, "Game is not in playing phase.")
	}
	slotID, ok := s.SlotOf(cmd.AccountID)
	if !ok {
		return nil, s, gameerr.New(gameerr.CodeNotInGame, "You are not in this game.")
	}

	ns := s.Clone()
	slot := ns.slot(slotID)
	if !contains(slot.Lineup, cmd.CardID) {
		return nil, s, gameerr.New(gameerr.CodeInvalidCard, "Card is not in your lineup.")
	}
	if contains(slot.PlayedCards, cmd.CardID) {
		return nil, s, gameerr.New(gameerr.CodeInvalidCard, "Card already played.")
	}

	chooser := ChooserFor(ns.CurrentRound)
	outcome := ns.roundResult(ns.CurrentRound)

	if outcome == nil {
		// First play of the round: must be the chooser, must name a stat.
		if slotID != chooser {
			return nil, s, gameerr.New(gameerr.CodeNotYourTurn, "Wait for opponent to play first.")
		}
		if cmd.Stat == "" {
			return nil, s, gameerr.New(gameerr.CodeStatRequired, "You must select a stat.")
		}
		card, exists := e.catalog.Get(cmd.CardID)
		if !exists {
			return nil, s, gameerr.New(gameerr.CodeCardNotFound, "Card not found.")
		}
		value, err := card.Stats.Value(cmd.Stat)
		if err != nil {
			return nil, s, gameerr.Newf(gameerr.CodeUnknownStat, "Unknown stat %q.", cmd.Stat)
		}

		rr := RoundResult{
			Round:  ns.CurrentRound,
			Stat:   cmd.Stat,
			Winner: RoundWinnerTie, // provisional until the responder plays
		}
		if slotID == Slot1 {
			rr.Player1Card = cmd.CardID
			rr.Player1Value = value
		} else {
			rr.Player2Card = cmd.CardID
			rr.Player2Value = value
		}
		ns.Rounds = append(ns.Rounds, rr)
		slot.PlayedCards = append(slot.PlayedCards, cmd.CardID)
		ns.CurrentTurn = slotID.Other()
		ns.TurnDeadline = now.Add(TurnTimeout)
		ns.UpdatedAt = now
		return []Event{{Type: EvtRoundOpened, Slot: slotID, Round: rr.Round}}, ns, nil
	}

	// Second play: must be the responder; the stat is already fixed.
	if slotID != chooser.Other() {
		return nil, s, gameerr.New(gameerr.CodeNotYourTurn, "Wait for your turn.")
	}
	card, exists := e.catalog.Get(cmd.CardID)
	if !exists {
		return nil, s, gameerr.New(gameerr.CodeCardNotFound, "Card not found.")
	}
	value, err := card.Stats.Value(outcome.Stat)
	if err != nil {
		return nil, s, gameerr.Newf(gameerr.CodeUnknownStat, "Unknown stat %q.", outcome.Stat)
	}

	if slotID == Slot1 {
		outcome.Player1Card = cmd.CardID
		outcome.Player1Value = value
	} else {
		outcome.Player2Card = cmd.CardID
		outcome.Player2Value = value
	}
	switch {
	case outcome.Player1Value > outcome.Player2Value:
		outcome.Winner = RoundWinner1
	case outcome.Player2Value > outcome.Player1Value:
		outcome.Winner = RoundWinner2
	default:
		outcome.Winner = RoundWinnerTie
	}
	slot.PlayedCards = append(slot.PlayedCards, cmd.CardID)
	ns.UpdatedAt = now

	events := []Event{{Type: EvtRoundResolved, Slot: slotID, Round: outcome.Round}}

	if ns.CurrentRound == LineupSize {
		wins1, wins2 := 0, 0
		for _, r := range ns.Rounds {
			switch r.Winner {
			case RoundWinner1:
				wins1++
			case RoundWinner2:
				wins2++
			}
		}
		switch {
		case wins1 > wins2:
			ns.Winner = Slot1
		case wins2 > wins1:
			ns.Winner = Slot2
		}
		ns.Status = StatusFinished
		ns.TurnDeadline = time.Time{}
		events = append(events, Event{Type: EvtBattleFinished, Slot: ns.Winner})
		return events, ns, nil
	}

	ns.CurrentRound++
	ns.CurrentTurn = ChooserFor(ns.CurrentRound)
	ns.TurnDeadline = now.Add(TurnTimeout)
	return events, ns, nil
}

// forfeit ends the battle in the opponent's favor. Already-finished sessions
// are left untouched so racing timeout forfeits stay safe: the first
// accepted write wins. A waiting session has no opponent to concede to and
// its join code is still live, so joining is the only way out of waiting.
func (e *Engine) forfeit(s Session, cmd Command, now time.Time) ([]Event, Session, error) {
	if s.Status == StatusWaiting {
		return nil, s, gameerr.New(gameerr.CodeWrongPhase, "Game has not started.")
	}
	if s.Status == StatusFinished {
		return nil, s, nil
	}
	slotID, ok := s.SlotOf(cmd.AccountID)
	if !ok {
		return nil, s, gameerr.New(gameerr.CodeNotInGame, "You are not in this game.")
	}

	ns := s.Clone()
	ns.Status = StatusFinished
	ns.Winner = slotID.Other()
	ns.TurnDeadline = time.Time{}
	ns.UpdatedAt = now
	return []Event{{Type: EvtBattleFinished, Slot: ns.Winner}}, ns, nil
}

func (e *Engine) claimPayout(s Session, cmd Command, now time.Time) ([]Event, Session, error) {
	if s.Status != StatusFinished {
		return nil, s, gameerr.New(gameerr.CodeWrongPhase, "Game is not finished.")
	}
	slotID, ok := s.SlotOf(cmd.AccountID)
	if !ok {
		return nil, s, gameerr.New(gameerr.CodeNotInGame, "You are not in this game.")
	}
	if s.Winner != slotID {
		return nil, s, gameerr.New(gameerr.CodeNotWinner, "You did not win this game.")
	}
	if s.slotValue(slotID).Claimed {
		return nil, s, gameerr.New(gameerr.CodeAlreadyClaimed, "Points already claimed.")
	}

	ns := s.Clone()
	ns.slot(slotID).Claimed = true
	ns.UpdatedAt = now
	return []Event{{Type: EvtPayoutClaimed, Slot: slotID}}, ns, nil
}

func (e *Engine) setConnected(s Session, cmd Command, now time.Time) ([]Event, Session, error) {
	slotID, ok := s.SlotOf(cmd.AccountID)
	if !ok {
		return nil, s, gameerr.New(gameerr.CodeNotInGame, "You are not in this game.")
	}
	ns := s.Clone()
	slot := ns.slot(slotID)
	slot.Connected = cmd.Connected
	slot.LastSeen = now
	ns.UpdatedAt = now
	return nil, ns, nil
}

func (s Session) slotValue(id SlotID) Slot {
	if id == Slot1 {
		return s.Player1
	}
	if s.Player2 != nil {
		return *s.Player2
	}
	return Slot{}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
