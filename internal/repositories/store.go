package repositories

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// gormStore is the gorm-backed Store. The same type serves both the root
// connection and in-transaction views; WithTransaction swaps the db handle.
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store over the given gorm connection.
func NewStore(db *gorm.DB) Store {
	if db == nil {
		panic("db is required")
	}
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository               { return &userRepository{db: s.db} }
func (s *gormStore) Wallets() WalletRepository           { return &walletRepository{db: s.db} }
func (s *gormStore) BankAccounts() BankAccountRepository { return &bankAccountRepository{db: s.db} }
func (s *gormStore) Transactions() TransactionRepository { return &transactionRepository{db: s.db} }
func (s *gormStore) AuditLogs() AuditLogRepository       { return &auditLogRepository{db: s.db} }

func (s *gormStore) WithTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}
