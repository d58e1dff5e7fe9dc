package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BankAccount struct {
	ID                uint            `gorm:"primarykey"`
	UserID            uint            `gorm:"index;not null"`
	AccountNumber     string          `gorm:"uniqueIndex;not null"`
	BankName          string          `gorm:"not null"`
	IfscCode          string          `gorm:"not null"`
	AccountHolderName string          `gorm:"not null"`
	BankBalance       decimal.Decimal `gorm:"type:numeric(15,2);not null"` // simulated
	Status            string          `gorm:"default:'ACTIVE'"`
	IsPrimary         bool            `gorm:"default:false"`
	IsVerified        bool            `gorm:"default:true"` // auto-verified in simulation
	Version           int64           `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MaskedAccountNumber hides all but the last four digits.
func (a *BankAccount) MaskedAccountNumber() string {
	if len(a.AccountNumber) <= 4 {
		return a.AccountNumber
	}
	return "XXXX-XXXX-" + a.AccountNumber[len(a.AccountNumber)-4:]
}
