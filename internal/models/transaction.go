package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionTypeDeposit    = "DEPOSIT"
	TransactionTypeWithdrawal = "WITHDRAWAL"
	TransactionTypeTransfer   = "TRANSFER"
	TransactionTypeRefund     = "REFUND"
)

// Transaction statuses
const (
	TransactionStatusPending = "PENDING"
	TransactionStatusSuccess = "SUCCESS"
	TransactionStatusFailed  = "FAILED"
)

// Fraud risk levels
const (
	RiskLevelLow      = "LOW"
	RiskLevelMedium   = "MEDIUM"
	RiskLevelHigh     = "HIGH"
	RiskLevelCritical = "CRITICAL"
)

// Transaction is the append-only ledger entry. Rows are never updated after
// creation; every engine invocation that moves (or is blocked from moving)
// money writes exactly one terminal record.
type Transaction struct {
	ID          uint   `gorm:"primarykey"`
	ReferenceID string `gorm:"uniqueIndex;not null;size:50"`
	// Client-supplied key preventing duplicate payments. Nil only for
	// records created by system-failed pre-checks.
	IdempotencyKey        *string          `gorm:"uniqueIndex;size:100"`
	SenderID              *uint            `gorm:"index"`
	ReceiverID            *uint            `gorm:"index"`
	Amount                decimal.Decimal  `gorm:"type:numeric(15,2);not null"`
	Fee                   decimal.Decimal  `gorm:"type:numeric(10,2);not null;default:0"`
	Type                  string           `gorm:"not null;size:20"`
	Status                string           `gorm:"not null;size:20;index;default:'PENDING'"`
	FraudRiskLevel        string           `gorm:"size:20;default:'LOW'"`
	FraudScore            int              `gorm:"default:0"`
	IsFlagged             bool             `gorm:"default:false;index"`
	Description           string           `gorm:"size:500"`
	FailureReason         string           `gorm:"size:300"`
	SenderBalanceBefore   *decimal.Decimal `gorm:"type:numeric(15,2)"`
	SenderBalanceAfter    *decimal.Decimal `gorm:"type:numeric(15,2)"`
	ReceiverBalanceBefore *decimal.Decimal `gorm:"type:numeric(15,2)"`
	ReceiverBalanceAfter  *decimal.Decimal `gorm:"type:numeric(15,2)"`
	ProcessedAt           *time.Time
	IPAddress             string    `gorm:"size:45"`
	CreatedAt             time.Time `gorm:"index"`
	UpdatedAt             time.Time
}
