package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Service is the transactional money-movement engine.
type Service interface {
	// Transfer moves funds between two user wallets.
	Transfer(ctx context.Context, req TransferRequest) (*View, error)
	// Deposit moves funds from a linked bank account into the user's wallet.
	Deposit(ctx context.Context, req DepositRequest) (*View, error)
	// GetHistory returns the user's transactions, newest first. Pages are
	// 1-based; out-of-range page and size fall back to the first page and
	// the default size.
	GetHistory(ctx context.Context, userID uint, page, size int) (*Page, error)
	// GetByReference returns a single transaction. Only the sender or the
	// receiver may read it.
	GetByReference(ctx context.Context, referenceID string, requestingUserID uint) (*View, error)
}

type TransferRequest struct {
	SenderID           uint
	ReceiverIdentifier string // UPI handle, phone or email
	Amount             decimal.Decimal
	Pin                string
	IdempotencyKey     string
	Description        string
	ClientIP           string
}

type DepositRequest struct {
	UserID         uint
	BankAccountID  uint
	Amount         decimal.Decimal
	IdempotencyKey string
	ClientIP       string
}

// Config holds the engine's amount limits.
type Config struct {
	MinAmount         decimal.Decimal
	MaxTransferAmount decimal.Decimal
	MaxDepositAmount  decimal.Decimal
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		MinAmount:         decimal.NewFromInt(1),
		MaxTransferAmount: decimal.NewFromInt(50000),
		MaxDepositAmount:  decimal.NewFromInt(100000),
	}
}

// View is the read-only projection returned to callers. It never exposes
// PIN hashes, raw account numbers or other users' idempotency keys.
type View struct {
	ID             uint             `json:"id"`
	ReferenceID    string           `json:"reference_id"`
	SenderName     string           `json:"sender_name,omitempty"`
	SenderUpiID    string           `json:"sender_upi_id,omitempty"`
	ReceiverName   string           `json:"receiver_name,omitempty"`
	ReceiverUpiID  string           `json:"receiver_upi_id,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	Fee            decimal.Decimal  `json:"fee"`
	Type           string           `json:"type"`
	Status         string           `json:"status"`
	FraudRiskLevel string           `json:"fraud_risk_level"`
	Description    string           `json:"description,omitempty"`
	FailureReason  string           `json:"failure_reason,omitempty"`
	BalanceAfter   *decimal.Decimal `json:"balance_after,omitempty"`
	ProcessedAt    *time.Time       `json:"processed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Page is a paginated list of transaction views.
type Page struct {
	Content       []View `json:"content"`
	PageNumber    int    `json:"page_number"`
	PageSize      int    `json:"page_size"`
	TotalElements int64  `json:"total_elements"`
	TotalPages    int64  `json:"total_pages"`
	Last          bool   `json:"last"`
}
