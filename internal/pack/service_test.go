package pack

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/footycards/attax-backend/internal/catalog"
	"github.com/footycards/attax-backend/internal/gameerr"
	"github.com/footycards/attax-backend/internal/ledger"
)

func shopFixture(t *testing.T) (*Service, *ledger.Memory) {
	t.Helper()
	cat := testCatalog(t,
		card("c1", catalog.RarityCommon),
		card("c2", catalog.RarityCommon),
		card("r1", catalog.RarityRare),
		card("e1", catalog.RarityEpic),
		card("l1", catalog.RarityLegendary),
		card("i1", catalog.RarityIcon),
	)
	// Common rolls only, cycling through the tier.
	rng := &seqRNG{floats: []float64{0.99}, ints: []int{0, 1, 0, 1, 0}}
	led := ledger.NewMemory(StartingPoints)
	return NewService(NewGenerator(cat, rng, zap.NewNop()), led, zap.NewNop()), led
}

func TestBuy_DebitsAndSettles(t *testing.T) {
	svc, led := shopFixture(t)
	ctx := context.Background()

	res, err := svc.Buy(ctx, "alice", "gold")
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if res.PointsSpent != Definitions["gold"].Price {
		t.Fatalf("spent = %d, want %d", res.PointsSpent, Definitions["gold"].Price)
	}
	if len(res.Cards) != CardsPerPack {
		t.Fatalf("got %d cards, want %d", len(res.Cards), CardsPerPack)
	}

	acc, _ := led.GetAccount(ctx, "alice")
	wantBalance := StartingPoints - Definitions["gold"].Price + res.PointsEarned
	if acc.Balance != wantBalance {
		t.Fatalf("balance = %d, want %d", acc.Balance, wantBalance)
	}
	for _, c := range res.NewCards {
		if !acc.OwnedCardIDs[c.ID] {
			t.Fatalf("new card %s missing from inventory", c.ID)
		}
	}
}

func TestBuy_UnknownTier(t *testing.T) {
	svc, _ := shopFixture(t)
	_, err := svc.Buy(context.Background(), "alice", "diamond")
	if gameerr.CodeOf(err) != gameerr.CodeUnknownPack {
		t.Fatalf("want UNKNOWN_PACK, got %v", err)
	}
}

func TestBuy_InsufficientPoints(t *testing.T) {
	svc, led := shopFixture(t)
	ctx := context.Background()

	// Drain the account below the cheapest pack.
	if err := led.Debit(ctx, "alice", StartingPoints-50); err != nil {
		t.Fatalf("drain: %v", err)
	}
	_, err := svc.Buy(ctx, "alice", "silver")
	if gameerr.CodeOf(err) != gameerr.CodeInsufficient {
		t.Fatalf("want INSUFFICIENT_POINTS, got %v", err)
	}

	acc, _ := led.GetAccount(ctx, "alice")
	if acc.Balance != 50 {
		t.Fatalf("failed buy changed the balance to %d", acc.Balance)
	}
}

func TestOpenFree_DailyLimitAndReset(t *testing.T) {
	svc, led := shopFixture(t)
	ctx := context.Background()

	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	now := day1
	led.WithClock(func() time.Time { return now })

	for i := 0; i < FreePacksPerDay; i++ {
		if _, err := svc.OpenFree(ctx, "alice"); err != nil {
			t.Fatalf("free pack %d: %v", i+1, err)
		}
	}
	_, err := svc.OpenFree(ctx, "alice")
	if gameerr.CodeOf(err) != gameerr.CodeNoPacksLeft {
		t.Fatalf("want NO_PACKS_LEFT, got %v", err)
	}

	// Next UTC day the counter resets.
	now = day1.Add(24 * time.Hour)
	if _, err := svc.OpenFree(ctx, "alice"); err != nil {
		t.Fatalf("free pack after reset: %v", err)
	}
}

func TestOpenFree_DoesNotCostPoints(t *testing.T) {
	svc, led := shopFixture(t)
	ctx := context.Background()

	res, err := svc.OpenFree(ctx, "alice")
	if err != nil {
		t.Fatalf("free pack: %v", err)
	}
	if res.PointsSpent != 0 {
		t.Fatalf("free pack spent %d points", res.PointsSpent)
	}

	acc, _ := led.GetAccount(ctx, "alice")
	if acc.Balance < StartingPoints {
		t.Fatalf("free pack reduced the balance to %d", acc.Balance)
	}
}
