// Package ledger is the boundary to player account state: currency balance,
// owned cards, and the daily free-pack counter. The game core only talks to
// the AccountLedger interface; persistence lives behind it.
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Account is a snapshot of one player's ledger state.
type Account struct {
	ID               string
	Balance          int
	OwnedCardIDs     map[string]bool
	PacksOpenedToday int
	LastPackReset    time.Time
	CreatedAt        time.Time
}

type AccountLedger interface {
	// GetAccount returns the account, creating it with the starting balance
	// on first sight.
	GetAccount(ctx context.Context, id string) (Account, error)
	Credit(ctx context.Context, id string, amount int) error
	// Debit subtracts amount, failing with ErrInsufficientFunds when the
	// balance cannot cover it.
	Debit(ctx context.Context, id string, amount int) error
	AddOwnedCards(ctx context.Context, id string, cardIDs []string) error
	// ResetDailyCounterIfNewUTCDay zeroes the free-pack counter once per UTC
	// day and returns the post-reset account.
	ResetDailyCounterIfNewUTCDay(ctx context.Context, id string) (Account, error)
	IncrementDailyPacks(ctx context.Context, id string) error
}

// SameUTCDay reports whether both instants fall on the same UTC calendar day.
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// Memory is an in-process ledger for tests and local runs.
type Memory struct {
	mu              sync.Mutex
	accounts        map[string]*Account
	startingBalance int
	now             func() time.Time
}

func NewMemory(startingBalance int) *Memory {
	return &Memory{
		accounts:        make(map[string]*Account),
		startingBalance: startingBalance,
		now:             time.Now,
	}
}

// WithClock overrides the clock, for daily-reset tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) get(id string) *Account {
	acc, ok := m.accounts[id]
	if !ok {
		acc = &Account{
			ID:            id,
			Balance:       m.startingBalance,
			OwnedCardIDs:  make(map[string]bool),
			LastPackReset: m.now(),
			CreatedAt:     m.now(),
		}
		m.accounts[id] = acc
	}
	return acc
}

func snapshot(acc *Account) Account {
	out := *acc
	out.OwnedCardIDs = make(map[string]bool, len(acc.OwnedCardIDs))
	for id := range acc.OwnedCardIDs {
		out.OwnedCardIDs[id] = true
	}
	return out
}

func (m *Memory) GetAccount(ctx context.Context, id string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot(m.get(id)), nil
}

func (m *Memory) Credit(ctx context.Context, id string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(id).Balance += amount
	return nil
}

func (m *Memory) Debit(ctx context.Context, id string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.get(id)
	if acc.Balance < amount {
		return ErrInsufficientFunds
	}
	acc.Balance -= amount
	return nil
}

func (m *Memory) AddOwnedCards(ctx context.Context, id string, cardIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.get(id)
	for _, cardID := range cardIDs {
		acc.OwnedCardIDs[cardID] = true
	}
	return nil
}

func (m *Memory) ResetDailyCounterIfNewUTCDay(ctx context.Context, id string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.get(id)
	if !SameUTCDay(acc.LastPackReset, m.now()) {
		acc.PacksOpenedToday = 0
		acc.LastPackReset = m.now()
	}
	return snapshot(acc), nil
}

func (m *Memory) IncrementDailyPacks(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(id).PacksOpenedToday++
	return nil
}
