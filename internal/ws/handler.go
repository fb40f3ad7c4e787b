package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/footycards/attax-backend/internal/battle"
	"github.com/footycards/attax-backend/internal/catalog"
	"github.com/footycards/attax-backend/internal/gameerr"
	"github.com/footycards/attax-backend/internal/hub"
	"github.com/footycards/attax-backend/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 90 * time.Second
)

// Handler attaches a client to a session: snapshots flow out through the
// hub, actions flow in and hit the battle service. The service publishes on
// every accepted mutation, so this layer never pushes state itself.
func Handler(svc *battle.Service, h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("game")
		if sessionID == "" {
			http.Error(w, "missing game", http.StatusBadRequest)
			return
		}
		accountID := r.Header.Get("X-Account-ID")
		if accountID == "" {
			accountID = r.URL.Query().Get("account")
		}
		if accountID == "" {
			http.Error(w, "missing account", http.StatusBadRequest)
			return
		}

		// Reject unknown sessions before upgrading.
		snap, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			if gameerr.IsDomain(err) {
				http.Error(w, "game not found", http.StatusNotFound)
			} else {
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			}
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan battle.Snapshot, 8)
		clientID := uuid.NewString()

		h.Inbox() <- hub.Subscribe{SessionID: sessionID, ClientID: clientID, Outbox: out}
		defer func() {
			h.Inbox() <- hub.Unsubscribe{SessionID: sessionID, ClientID: clientID}
		}()

		_ = svc.SetConnected(r.Context(), sessionID, accountID, true)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			_ = svc.SetConnected(ctx, sessionID, accountID, false)
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			// Send the state we loaded before subscribing, then relay.
			writeSnapshot(writeCtx, conn, snap)
			for s := range out {
				writeSnapshot(writeCtx, conn, s)
			}
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "BAD_JSON", "could not parse message")
				continue
			}

			if err := dispatch(r.Context(), svc, sessionID, accountID, cm); err != nil {
				var ge *gameerr.Error
				if errors.As(err, &ge) {
					writeError(r.Context(), conn, string(ge.Code), ge.Reason)
					continue
				}
				log.Error("action failed",
					zap.String("session", sessionID),
					zap.String("type", cm.Type),
					zap.Error(err))
				writeError(r.Context(), conn, "INTERNAL", "something went wrong, try again")
			}
		}
	}
}

func dispatch(ctx context.Context, svc *battle.Service, sessionID, accountID string, cm types.ClientMessage) error {
	switch cm.Type {
	case "SubmitLineup":
		_, err := svc.SubmitLineup(ctx, sessionID, accountID, cm.CardIDs)
		return err
	case "PlayCard":
		var stat catalog.Stat
		if cm.Stat != "" {
			parsed, ok := catalog.ParseStat(cm.Stat)
			if !ok {
				return gameerr.Newf(gameerr.CodeUnknownStat, "Unknown stat %q.", cm.Stat)
			}
			stat = parsed
		}
		_, err := svc.PlayCard(ctx, sessionID, accountID, cm.CardID, stat)
		return err
	case "Forfeit":
		return svc.Forfeit(ctx, sessionID, accountID)
	default:
		return gameerr.Newf(gameerr.CodeUnknown, "unknown message type %q", cm.Type)
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, snap battle.Snapshot) {
	state := snap.Session
	msg := types.ServerMessage{Type: "StateSnapshot", Version: snap.Version, State: &state}
	payload, _ := json.Marshal(msg)
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	_ = conn.Write(wctx, websocket.MessageText, payload)
	cancel()
}

func writeError(ctx context.Context, conn *websocket.Conn, code, reason string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Code: code, Error: reason})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	_ = conn.Write(wctx, websocket.MessageText, payload)
	cancel()
}
