// Package hub fans session snapshots out to connected clients. A single
// actor goroutine owns the subscriber table; everything reaches it through
// the typed message inbox, so there is no shared-state locking.
package hub

import (
	"context"

	"github.com/footycards/attax-backend/internal/battle"
)

type Msg interface{ isHubMsg() }

type Subscribe struct {
	SessionID string
	ClientID  string
	Outbox    chan battle.Snapshot // where this client wants snapshots
}

type Unsubscribe struct {
	SessionID string
	ClientID  string
}

type publishMsg struct {
	SessionID string
	Snap      battle.Snapshot
}

type Shutdown struct{}

type GetView struct {
	SessionID string
	Reply     chan View
}

// View reflects internal state for tests without data races.
type View struct {
	NumClients int
}

func (Subscribe) isHubMsg()   {}
func (Unsubscribe) isHubMsg() {}
func (publishMsg) isHubMsg()  {}
func (Shutdown) isHubMsg()    {}
func (GetView) isHubMsg()     {}

type Hub struct {
	inbox    chan Msg
	sessions map[string]map[string]chan battle.Snapshot
	latest   map[string]battle.Snapshot
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan Msg, 64),
		sessions: make(map[string]map[string]chan battle.Snapshot),
		latest:   make(map[string]battle.Snapshot),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

// Publish satisfies battle.Publisher. Delivery is at-least-once; consumers
// treat each snapshot as a full-state replacement.
func (h *Hub) Publish(sessionID string, snap battle.Snapshot) {
	select {
	case h.inbox <- publishMsg{SessionID: sessionID, Snap: snap}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Subscribe:
				subs := h.sessions[msg.SessionID]
				if subs == nil {
					subs = make(map[string]chan battle.Snapshot)
					h.sessions[msg.SessionID] = subs
				}
				subs[msg.ClientID] = msg.Outbox
				// Late joiners get the current state immediately. Non-blocking
				// so a full outbox can never stall the actor.
				if snap, ok := h.latest[msg.SessionID]; ok {
					select {
					case msg.Outbox <- snap:
					default:
					}
				}

			case Unsubscribe:
				if subs := h.sessions[msg.SessionID]; subs != nil {
					// Closing the outbox is what ends the client's writer
					// loop; only this actor ever sends on it.
					if ch, ok := subs[msg.ClientID]; ok {
						close(ch)
						delete(subs, msg.ClientID)
					}
					if len(subs) == 0 {
						delete(h.sessions, msg.SessionID)
					}
				}

			case publishMsg:
				h.latest[msg.SessionID] = msg.Snap
				h.broadcast(msg.SessionID, msg.Snap)

			case GetView:
				msg.Reply <- View{NumClients: len(h.sessions[msg.SessionID])}

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) broadcast(sessionID string, snap battle.Snapshot) {
	subs := h.sessions[sessionID]
	for id, ch := range subs {
		select {
		case ch <- snap:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(subs, id)
		}
	}
}

func (h *Hub) shutdown() {
	for sessionID, subs := range h.sessions {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(h.sessions, sessionID)
	}
	h.cancel()
}
