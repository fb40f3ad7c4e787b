package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/footycards/attax-backend/internal/battle"
	"github.com/footycards/attax-backend/internal/hub"
	"github.com/footycards/attax-backend/internal/ledger"
	"github.com/footycards/attax-backend/internal/pack"
	"github.com/footycards/attax-backend/internal/ws"
)

func SetupRoutes(battleSvc *battle.Service, packSvc *pack.Service, led ledger.AccountLedger, h *hub.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/games", CreateGame(battleSvc, log))
	r.Post("/games/join", JoinGame(battleSvc, log))
	r.Get("/games/{id}", GetGame(battleSvc, log))
	r.Post("/games/{id}/claim", ClaimPayout(battleSvc, log))
	r.Post("/packs/open", OpenPack(packSvc, log))
	r.Get("/account", GetAccount(led, log))
	r.Get("/ws", ws.Handler(battleSvc, h, log))
	r.Get("/healthz", Healthz)
	return r
}
