// Package types defines the wire shapes shared with clients.
package types

import "github.com/footycards/attax-backend/internal/engine"

// ClientMessage is one action sent over the websocket.
//
// SubmitLineup: card_ids (exactly 7)
// PlayCard:     card_id, stat (stat only when opening the round)
// Forfeit:      {}
type ClientMessage struct {
	Type    string   `json:"type"`
	CardIDs []string `json:"card_ids,omitempty"`
	CardID  string   `json:"card_id,omitempty"`
	Stat    string   `json:"stat,omitempty"`
}

// ServerMessage is either a full-state snapshot or a rejected-action report.
type ServerMessage struct {
	Type    string          `json:"type"` // "StateSnapshot" | "Error"
	Version uint64          `json:"version,omitempty"`
	State   *engine.Session `json:"state,omitempty"`
	Code    string          `json:"code,omitempty"`
	Error   string          `json:"error,omitempty"`
}
