package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccount_CreatesWithStartingBalance(t *testing.T) {
	m := NewMemory(1000)
	ctx := context.Background()

	acc, err := m.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.ID)
	assert.Equal(t, 1000, acc.Balance)
	assert.Empty(t, acc.OwnedCardIDs)
	assert.Zero(t, acc.PacksOpenedToday)

	// Second fetch returns the same account, not a fresh one.
	require.NoError(t, m.Credit(ctx, "alice", 50))
	acc, err = m.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1050, acc.Balance)
}

func TestDebit_RefusesOverdraft(t *testing.T) {
	m := NewMemory(100)
	ctx := context.Background()

	err := m.Debit(ctx, "alice", 150)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	acc, _ := m.GetAccount(ctx, "alice")
	assert.Equal(t, 100, acc.Balance, "failed debit must not touch the balance")

	require.NoError(t, m.Debit(ctx, "alice", 100))
	acc, _ = m.GetAccount(ctx, "alice")
	assert.Zero(t, acc.Balance)
}

func TestAddOwnedCards_IsSetSemantics(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	require.NoError(t, m.AddOwnedCards(ctx, "alice", []string{"c1", "c2"}))
	require.NoError(t, m.AddOwnedCards(ctx, "alice", []string{"c2", "c3"}))

	acc, _ := m.GetAccount(ctx, "alice")
	assert.Len(t, acc.OwnedCardIDs, 3)
	for _, id := range []string{"c1", "c2", "c3"} {
		assert.True(t, acc.OwnedCardIDs[id], id)
	}
}

func TestDailyCounter_ResetsOnNewUTCDay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC)
	m := NewMemory(0)
	m.WithClock(func() time.Time { return now })

	require.NoError(t, m.IncrementDailyPacks(ctx, "alice"))
	require.NoError(t, m.IncrementDailyPacks(ctx, "alice"))

	// Same day: nothing resets.
	acc, err := m.ResetDailyCounterIfNewUTCDay(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, acc.PacksOpenedToday)

	// Twenty minutes later it is a new UTC day.
	now = now.Add(20 * time.Minute)
	acc, err = m.ResetDailyCounterIfNewUTCDay(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, acc.PacksOpenedToday)
}

func TestSameUTCDay(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"identical", base, base, true},
		{"same day different hour", base, base.Add(11 * time.Hour), true},
		{"across midnight", base, base.Add(13 * time.Hour), false},
		{"zone normalized", base, base.In(time.FixedZone("UTC+5", 5*3600)), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SameUTCDay(tc.a, tc.b))
		})
	}
}

func TestSnapshot_IsolatesCallers(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()
	require.NoError(t, m.AddOwnedCards(ctx, "alice", []string{"c1"}))

	acc, _ := m.GetAccount(ctx, "alice")
	acc.OwnedCardIDs["c2"] = true

	fresh, _ := m.GetAccount(ctx, "alice")
	assert.False(t, fresh.OwnedCardIDs["c2"], "mutation through a snapshot reached the ledger")
}
