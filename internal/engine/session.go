package engine

import (
	"time"

	"github.com/footycards/attax-backend/internal/catalog"
)

const (
	// LineupSize is how many cards each player commits to a battle.
	LineupSize = 7
	// TurnTimeout bounds how long a player may sit on their turn. Advisory:
	// the opponent's client acts on it, the server does not.
	TurnTimeout = 60 * time.Second
	// WinnerPoints is the fixed currency award for winning a battle.
	WinnerPoints = 200
	// CodeLength is the length of a shareable join code.
	CodeLength = 6
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusSelecting Status = "selecting"
	StatusPlaying   Status = "playing"
	StatusFinished  Status = "finished"
)

// SlotID names one of the two player slots.
type SlotID string

const (
	Slot1 SlotID = "player1"
	Slot2 SlotID = "player2"
)

// Other returns the opposing slot.
func (s SlotID) Other() SlotID {
	if s == Slot1 {
		return Slot2
	}
	return Slot1
}

// Slot is one player's half of a session.
type Slot struct {
	AccountID   string    `json:"accountId"`
	DisplayName string    `json:"displayName"`
	Lineup      []string  `json:"lineup"`
	PlayedCards []string  `json:"playedCards"`
	Ready       bool      `json:"ready"`
	Connected   bool      `json:"connected"`
	LastSeen    time.Time `json:"lastSeen"`
	Claimed     bool      `json:"claimed"`
}

// RoundWinner tags the outcome of a single round.
type RoundWinner string

const (
	RoundWinner1   RoundWinner = "player1"
	RoundWinner2   RoundWinner = "player2"
	RoundWinnerTie RoundWinner = "tie"
)

// RoundResult records one round. Until the responder plays, only the
// chooser's side is filled and Winner holds a provisional tie.
type RoundResult struct {
	Round        int          `json:"round"`
	Player1Card  string       `json:"player1Card"`
	Player2Card  string       `json:"player2Card"`
	Stat         catalog.Stat `json:"stat"`
	Player1Value int          `json:"player1Value"`
	Player2Value int          `json:"player2Value"`
	Winner       RoundWinner  `json:"winner"`
}

// Session is the authoritative state of one battle. Mutated only through
// Apply; the status only ever moves forward.
type Session struct {
	ID           string        `json:"id"`
	Code         string        `json:"code"`
	Status       Status        `json:"status"`
	Player1      Slot          `json:"player1"`
	Player2      *Slot         `json:"player2"`
	CurrentRound int           `json:"currentRound"`
	CurrentTurn  SlotID        `json:"currentTurn"`
	TurnDeadline time.Time     `json:"turnDeadline"`
	Rounds       []RoundResult `json:"rounds"`
	Winner       SlotID        `json:"winner,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// NewSession builds a fresh waiting session with slot 1 occupied.
func NewSession(id, code, accountID, displayName string, now time.Time) Session {
	return Session{
		ID:     id,
		Code:   code,
		Status: StatusWaiting,
		Player1: Slot{
			AccountID:   accountID,
			DisplayName: displayName,
			Lineup:      []string{},
			PlayedCards: []string{},
			Connected:   true,
			LastSeen:    now,
		},
		CurrentTurn: Slot1,
		Rounds:      []RoundResult{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone deep-copies the session so Apply never aliases its input.
func (s Session) Clone() Session {
	out := s
	out.Player1 = s.Player1.clone()
	if s.Player2 != nil {
		p2 := s.Player2.clone()
		out.Player2 = &p2
	}
	out.Rounds = make([]RoundResult, len(s.Rounds))
	copy(out.Rounds, s.Rounds)
	return out
}

func (sl Slot) clone() Slot {
	out := sl
	out.Lineup = append([]string{}, sl.Lineup...)
	out.PlayedCards = append([]string{}, sl.PlayedCards...)
	return out
}

// SlotOf resolves which slot an account occupies.
func (s Session) SlotOf(accountID string) (SlotID, bool) {
	if s.Player1.AccountID == accountID {
		return Slot1, true
	}
	if s.Player2 != nil && s.Player2.AccountID == accountID {
		return Slot2, true
	}
	return "", false
}

func (s *Session) slot(id SlotID) *Slot {
	if id == Slot1 {
		return &s.Player1
	}
	return s.Player2
}

// ChooserFor returns the stat-choosing slot for a round: slot 1 on odd
// rounds, slot 2 on even ones.
func ChooserFor(round int) SlotID {
	if round%2 == 1 {
		return Slot1
	}
	return Slot2
}

// roundResult finds the recorded outcome for a round, if the chooser has
// already played it.
func (s *Session) roundResult(round int) *RoundResult {
	for i := range s.Rounds {
		if s.Rounds[i].Round == round {
			return &s.Rounds[i]
		}
	}
	return nil
}
