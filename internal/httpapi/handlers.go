package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/footycards/attax-backend/internal/battle"
	"github.com/footycards/attax-backend/internal/gameerr"
	"github.com/footycards/attax-backend/internal/ledger"
	"github.com/footycards/attax-backend/internal/pack"
)

// accountID pulls the caller's identity set by the external auth layer.
func accountID(r *http.Request) string {
	return r.Header.Get("X-Account-ID")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr renders business-rule rejections verbatim and hides
// infrastructure failures behind a generic message.
func writeErr(w http.ResponseWriter, log *zap.Logger, err error) {
	var ge *gameerr.Error
	if errors.As(err, &ge) {
		writeJSON(w, ge.Code.HTTPStatus(), map[string]string{
			"code":  string(ge.Code),
			"error": ge.Reason,
		})
		return
	}
	log.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"code":  "INTERNAL",
		"error": "something went wrong, try again",
	})
}

func requireAccount(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := accountID(r)
	if id == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"code":  "UNAUTHENTICATED",
			"error": "missing X-Account-ID",
		})
		return "", false
	}
	return id, true
}

func CreateGame(svc *battle.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireAccount(w, r)
		if !ok {
			return
		}
		var req struct {
			DisplayName string `json:"display_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}

		gameID, code, err := svc.Create(r.Context(), id, req.DisplayName)
		if err != nil {
			writeErr(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, struct {
			GameID string `json:"game_id"`
			Code   string `json:"code"`
		}{GameID: gameID, Code: code})
	}
}

func JoinGame(svc *battle.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireAccount(w, r)
		if !ok {
			return
		}
		var req struct {
			Code        string `json:"code"`
			DisplayName string `json:"display_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}

		sess, err := svc.Join(r.Context(), req.Code, id, req.DisplayName)
		if err != nil {
			writeErr(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			GameID string `json:"game_id"`
		}{GameID: sess.ID})
	}
}

func GetGame(svc *battle.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func ClaimPayout(svc *battle.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireAccount(w, r)
		if !ok {
			return
		}
		points, err := svc.ClaimPayout(r.Context(), chi.URLParam(r, "id"), id)
		if err != nil {
			writeErr(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Points int `json:"points"`
		}{Points: points})
	}
}

func OpenPack(svc *pack.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireAccount(w, r)
		if !ok {
			return
		}
		var req struct {
			Tier string `json:"tier"` // pack tier, or "free" for the daily allowance
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}

		var (
			res pack.OpenResult
			err error
		)
		if req.Tier == "free" {
			res, err = svc.OpenFree(r.Context(), id)
		} else {
			res, err = svc.Buy(r.Context(), id, req.Tier)
		}
		if err != nil {
			writeErr(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func GetAccount(led ledger.AccountLedger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireAccount(w, r)
		if !ok {
			return
		}
		acc, err := led.GetAccount(r.Context(), id)
		if err != nil {
			writeErr(w, log, err)
			return
		}
		owned := make([]string, 0, len(acc.OwnedCardIDs))
		for cardID := range acc.OwnedCardIDs {
			owned = append(owned, cardID)
		}
		writeJSON(w, http.StatusOK, struct {
			Balance          int      `json:"balance"`
			OwnedCardIDs     []string `json:"owned_card_ids"`
			PacksOpenedToday int      `json:"packs_opened_today"`
		}{Balance: acc.Balance, OwnedCardIDs: owned, PacksOpenedToday: acc.PacksOpenedToday})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
