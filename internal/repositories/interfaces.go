// Package repositories provides the data access layer. All balance-bearing
// rows are mutated through these interfaces so locking and versioning rules
// live in one place.
package repositories

import (
	"context"
	"errors"
	"time"

	"paylink/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrBankAccountNotFound = errors.New("bank account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrDuplicateKey is returned when an insert violates a unique
	// constraint, e.g. a reused idempotency key.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrVersionConflict is returned when an optimistic update lost the
	// race against a concurrent writer.
	ErrVersionConflict = errors.New("version conflict")
)

// Store bundles all repositories behind a single transactional boundary.
// WithTransaction yields a Store whose repositories share one database
// transaction; row locks taken through it are held until commit/rollback.
type Store interface {
	Users() UserRepository
	Wallets() WalletRepository
	BankAccounts() BankAccountRepository
	Transactions() TransactionRepository
	AuditLogs() AuditLogRepository

	// WithTransaction runs fn atomically at serializable isolation.
	// Any error from fn rolls the whole unit back.
	WithTransaction(ctx context.Context, fn func(Store) error) error
}

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	// GetByIdentifier resolves a UPI handle, phone number or email.
	GetByIdentifier(identifier string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdateStatus(id uint, status string) error
	IncrementFailedLoginAttempts(id uint) error
	ResetFailedLoginAttempts(id uint) error
	IncrementTokenVersion(id uint) error
	List(limit, offset int) ([]models.User, int64, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

type WalletRepository interface {
	Create(wallet *models.Wallet) error
	GetByUserID(userID uint) (*models.Wallet, error)
	// GetByUserIDForUpdate takes the wallet's exclusive row lock. Must be
	// called inside WithTransaction; the lock is held until commit.
	GetByUserIDForUpdate(userID uint) (*models.Wallet, error)
	// Update persists balance fields guarded by the wallet's version;
	// returns ErrVersionConflict if the row changed underneath.
	Update(wallet *models.Wallet) error
	// ResetDailySpent zeroes daily_spent for all wallets and reports how
	// many rows changed.
	ResetDailySpent() (int64, error)
}

type BankAccountRepository interface {
	Create(account *models.BankAccount) error
	GetByID(id uint) (*models.BankAccount, error)
	// GetByIDForUpdate takes the account's exclusive row lock.
	GetByIDForUpdate(id uint) (*models.BankAccount, error)
	GetByUserID(userID uint) ([]models.BankAccount, error)
	Update(account *models.BankAccount) error
	Delete(id uint) error
	ExistsByAccountNumber(accountNumber string) (bool, error)
}

type TransactionRepository interface {
	// Create appends a ledger entry. A unique-constraint violation on the
	// idempotency key surfaces as ErrDuplicateKey.
	Create(tx *models.Transaction) error
	GetByReferenceID(referenceID string) (*models.Transaction, error)
	GetByIdempotencyKey(key string) (*models.Transaction, error)
	ListByUser(userID uint, limit, offset int) ([]models.Transaction, int64, error)
	ListFlagged(limit, offset int) ([]models.Transaction, int64, error)
	// CountRecentByUser counts the sender's non-failed transactions since
	// the given instant. Feeds the fraud velocity signals.
	CountRecentByUser(userID uint, since time.Time) (int64, error)
	// SumVolumeSince totals the amount of all successful transactions
	// across users since the given instant.
	SumVolumeSince(since time.Time) (decimal.Decimal, error)
	Count() (int64, error)
	CountFlagged() (int64, error)
}

type AuditLogRepository interface {
	Create(entry *models.AuditLog) error
}
