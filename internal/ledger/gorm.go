package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRow is the accounts table.
type accountRow struct {
	ID               string `gorm:"primaryKey"`
	Balance          int    `gorm:"not null"`
	PacksOpenedToday int    `gorm:"not null;default:0"`
	LastPackReset    time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (accountRow) TableName() string { return "accounts" }

// ownedCardRow records one card in one account's collection. The composite
// unique index makes ownership a set: adding a duplicate is a no-op.
type ownedCardRow struct {
	ID        uint   `gorm:"primaryKey"`
	AccountID string `gorm:"not null;uniqueIndex:idx_account_card"`
	CardID    string `gorm:"not null;uniqueIndex:idx_account_card"`
	CreatedAt time.Time
}

func (ownedCardRow) TableName() string { return "account_cards" }

// Gorm is the Postgres-backed AccountLedger.
type Gorm struct {
	db              *gorm.DB
	startingBalance int
	now             func() time.Time
}

func NewGorm(db *gorm.DB, startingBalance int) (*Gorm, error) {
	if err := db.AutoMigrate(&accountRow{}, &ownedCardRow{}); err != nil {
		return nil, fmt.Errorf("migrate ledger tables: %w", err)
	}
	return &Gorm{db: db, startingBalance: startingBalance, now: time.Now}, nil
}

func (g *Gorm) load(ctx context.Context, tx *gorm.DB, id string) (accountRow, error) {
	var row accountRow
	err := tx.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = accountRow{
			ID:            id,
			Balance:       g.startingBalance,
			LastPackReset: g.now(),
		}
		if err := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return accountRow{}, fmt.Errorf("create account: %w", err)
		}
		return row, nil
	}
	if err != nil {
		return accountRow{}, fmt.Errorf("load account: %w", err)
	}
	return row, nil
}

func (g *Gorm) GetAccount(ctx context.Context, id string) (Account, error) {
	row, err := g.load(ctx, g.db, id)
	if err != nil {
		return Account{}, err
	}

	var cardIDs []string
	if err := g.db.WithContext(ctx).Model(&ownedCardRow{}).
		Where("account_id = ?", id).Pluck("card_id", &cardIDs).Error; err != nil {
		return Account{}, fmt.Errorf("load owned cards: %w", err)
	}
	owned := make(map[string]bool, len(cardIDs))
	for _, cardID := range cardIDs {
		owned[cardID] = true
	}

	return Account{
		ID:               row.ID,
		Balance:          row.Balance,
		OwnedCardIDs:     owned,
		PacksOpenedToday: row.PacksOpenedToday,
		LastPackReset:    row.LastPackReset,
		CreatedAt:        row.CreatedAt,
	}, nil
}

func (g *Gorm) Credit(ctx context.Context, id string, amount int) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := g.load(ctx, tx, id); err != nil {
			return err
		}
		return tx.Model(&accountRow{}).Where("id = ?", id).
			Update("balance", gorm.Expr("balance + ?", amount)).Error
	})
}

func (g *Gorm) Debit(ctx context.Context, id string, amount int) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := g.load(ctx, tx, id); err != nil {
			return err
		}
		res := tx.Model(&accountRow{}).
			Where("id = ? AND balance >= ?", id, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}
		return nil
	})
}

func (g *Gorm) AddOwnedCards(ctx context.Context, id string, cardIDs []string) error {
	if len(cardIDs) == 0 {
		return nil
	}
	rows := make([]ownedCardRow, 0, len(cardIDs))
	for _, cardID := range cardIDs {
		rows = append(rows, ownedCardRow{AccountID: id, CardID: cardID})
	}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (g *Gorm) ResetDailyCounterIfNewUTCDay(ctx context.Context, id string) (Account, error) {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := g.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if SameUTCDay(row.LastPackReset, g.now()) {
			return nil
		}
		return tx.Model(&accountRow{}).Where("id = ?", id).
			Updates(map[string]any{
				"packs_opened_today": 0,
				"last_pack_reset":    g.now(),
			}).Error
	})
	if err != nil {
		return Account{}, err
	}
	return g.GetAccount(ctx, id)
}

func (g *Gorm) IncrementDailyPacks(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Model(&accountRow{}).Where("id = ?", id).
		Update("packs_opened_today", gorm.Expr("packs_opened_today + 1")).Error
}
