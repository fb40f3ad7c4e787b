package pack

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/footycards/attax-backend/internal/catalog"
	"github.com/footycards/attax-backend/internal/gameerr"
	"github.com/footycards/attax-backend/internal/ledger"
)

// OpenResult is what a player gets back from opening a pack.
type OpenResult struct {
	Cards        []catalog.Card `json:"cards"`
	NewCards     []catalog.Card `json:"newCards"`
	Duplicates   []catalog.Card `json:"duplicates"`
	PointsEarned int            `json:"pointsEarned"`
	PointsSpent  int            `json:"pointsSpent"`
}

// Service runs the shop flows: paid packs and the free daily allowance.
type Service struct {
	gen    *Generator
	ledger ledger.AccountLedger
	log    *zap.Logger
}

func NewService(gen *Generator, led ledger.AccountLedger, log *zap.Logger) *Service {
	return &Service{gen: gen, ledger: led, log: log}
}

// Buy debits the pack price, draws the cards, and settles the collection:
// new cards join the inventory, duplicates convert to points. The owned-card
// snapshot is taken fresh after the debit so a concurrent purchase cannot
// misclassify cards.
func (s *Service) Buy(ctx context.Context, accountID, tier string) (OpenResult, error) {
	def, ok := Definitions[tier]
	if !ok {
		return OpenResult{}, gameerr.Newf(gameerr.CodeUnknownPack, "Unknown pack %q.", tier)
	}

	if err := s.ledger.Debit(ctx, accountID, def.Price); err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return OpenResult{}, gameerr.Newf(gameerr.CodeInsufficient, "Not enough points! This pack costs %d.", def.Price)
		}
		return OpenResult{}, fmt.Errorf("debit pack price: %w", err)
	}

	res, err := s.open(ctx, accountID, def)
	if err != nil {
		return OpenResult{}, err
	}
	res.PointsSpent = def.Price
	return res, nil
}

// OpenFree opens one of the daily free packs, resetting the counter at the
// first open of a new UTC day.
func (s *Service) OpenFree(ctx context.Context, accountID string) (OpenResult, error) {
	acc, err := s.ledger.ResetDailyCounterIfNewUTCDay(ctx, accountID)
	if err != nil {
		return OpenResult{}, fmt.Errorf("reset daily counter: %w", err)
	}
	if acc.PacksOpenedToday >= FreePacksPerDay {
		return OpenResult{}, gameerr.New(gameerr.CodeNoPacksLeft, "No packs remaining today. Come back tomorrow!")
	}
	if err := s.ledger.IncrementDailyPacks(ctx, accountID); err != nil {
		return OpenResult{}, fmt.Errorf("count free pack: %w", err)
	}
	return s.open(ctx, accountID, Definitions[FreePackTier])
}

func (s *Service) open(ctx context.Context, accountID string, def Definition) (OpenResult, error) {
	acc, err := s.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return OpenResult{}, fmt.Errorf("load account: %w", err)
	}

	cards := s.gen.Generate(def, CardsPerPack)
	rec := Reconcile(cards, acc.OwnedCardIDs)

	if len(rec.NewCards) > 0 {
		ids := make([]string, 0, len(rec.NewCards))
		for _, c := range rec.NewCards {
			ids = append(ids, c.ID)
		}
		if err := s.ledger.AddOwnedCards(ctx, accountID, ids); err != nil {
			return OpenResult{}, fmt.Errorf("add owned cards: %w", err)
		}
	}
	if rec.Points > 0 {
		if err := s.ledger.Credit(ctx, accountID, rec.Points); err != nil {
			return OpenResult{}, fmt.Errorf("credit duplicate points: %w", err)
		}
	}

	s.log.Info("pack opened",
		zap.String("account", accountID),
		zap.String("pack", def.Name),
		zap.Int("new", len(rec.NewCards)),
		zap.Int("duplicates", len(rec.Duplicates)),
		zap.Int("points", rec.Points))

	return OpenResult{
		Cards:        cards,
		NewCards:     rec.NewCards,
		Duplicates:   rec.Duplicates,
		PointsEarned: rec.Points,
	}, nil
}
