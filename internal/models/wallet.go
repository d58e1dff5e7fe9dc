package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID         uint            `gorm:"primarykey"`
	UserID     uint            `gorm:"uniqueIndex;not null"`
	Balance    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	DailySpent decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	DailyLimit decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	// Version guards non-locked reads against lost updates. Incremented on
	// every balance mutation; a stale write is rejected by the repository.
	Version   int64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSufficientBalance reports whether the wallet can cover amount.
func (w *Wallet) HasSufficientBalance(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// IsDailyLimitExceeded reports whether spending amount would breach the
// wallet's daily limit.
func (w *Wallet) IsDailyLimitExceeded(amount decimal.Decimal) bool {
	return w.DailySpent.Add(amount).GreaterThan(w.DailyLimit)
}

// Debit removes amount from the balance and counts it against the daily
// limit. Callers must hold the wallet's row lock and have validated the
// balance first.
func (w *Wallet) Debit(amount decimal.Decimal) {
	w.Balance = w.Balance.Sub(amount)
	w.DailySpent = w.DailySpent.Add(amount)
}

// Credit adds amount to the balance.
func (w *Wallet) Credit(amount decimal.Decimal) {
	w.Balance = w.Balance.Add(amount)
}
