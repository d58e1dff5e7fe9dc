package wallet

import (
	"context"
	"testing"

	"paylink/internal/errors"
	"paylink/internal/models"
	"paylink/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	wallets map[uint]*models.Wallet
}

func (f *fakeStore) Users() repositories.UserRepository               { return nil }
func (f *fakeStore) Wallets() repositories.WalletRepository           { return &fakeWallets{f} }
func (f *fakeStore) BankAccounts() repositories.BankAccountRepository { return nil }
func (f *fakeStore) Transactions() repositories.TransactionRepository { return nil }
func (f *fakeStore) AuditLogs() repositories.AuditLogRepository       { return nil }

func (f *fakeStore) WithTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	return fn(f)
}

type fakeWallets struct{ store *fakeStore }

func (r *fakeWallets) Create(wallet *models.Wallet) error {
	r.store.wallets[wallet.UserID] = wallet
	return nil
}

func (r *fakeWallets) GetByUserID(userID uint) (*models.Wallet, error) {
	w, ok := r.store.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	return w, nil
}

func (r *fakeWallets) GetByUserIDForUpdate(userID uint) (*models.Wallet, error) {
	return r.GetByUserID(userID)
}

func (r *fakeWallets) Update(wallet *models.Wallet) error { return nil }

func (r *fakeWallets) ResetDailySpent() (int64, error) {
	var count int64
	for _, w := range r.store.wallets {
		if !w.DailySpent.IsZero() {
			w.DailySpent = decimal.Zero
			count++
		}
	}
	return count, nil
}

func seedWallet(store *fakeStore, userID uint, balance, spent, limit string) {
	store.wallets[userID] = &models.Wallet{
		ID:         userID,
		UserID:     userID,
		Balance:    decimal.RequireFromString(balance),
		DailySpent: decimal.RequireFromString(spent),
		DailyLimit: decimal.RequireFromString(limit),
	}
}

func TestGetWallet(t *testing.T) {
	store := &fakeStore{wallets: make(map[uint]*models.Wallet)}
	seedWallet(store, 1, "2500.50", "400.00", "100000.00")
	svc := NewService(store, nil)

	view, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, view.Balance.Equal(decimal.RequireFromString("2500.50")))
	assert.True(t, view.DailySpent.Equal(decimal.RequireFromString("400.00")))
	assert.True(t, view.AvailableToday.Equal(decimal.RequireFromString("99600.00")))
}

func TestGetWallet_AvailableClampedAtZero(t *testing.T) {
	store := &fakeStore{wallets: make(map[uint]*models.Wallet)}
	// Spent above the limit can happen after an admin lowers the limit.
	seedWallet(store, 1, "100.00", "5000.00", "1000.00")
	svc := NewService(store, nil)

	view, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, view.AvailableToday.IsZero())
}

func TestGetWallet_NotFound(t *testing.T) {
	store := &fakeStore{wallets: make(map[uint]*models.Wallet)}
	svc := NewService(store, nil)

	_, err := svc.GetWallet(context.Background(), 42)
	var domainErr *errors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeNotFound, domainErr.Code)
}

func TestResetDailyLimits(t *testing.T) {
	store := &fakeStore{wallets: make(map[uint]*models.Wallet)}
	seedWallet(store, 1, "100.00", "500.00", "1000.00")
	seedWallet(store, 2, "100.00", "0.00", "1000.00")
	seedWallet(store, 3, "100.00", "999.99", "1000.00")
	svc := NewService(store, nil)

	count, err := svc.ResetDailyLimits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	for id := uint(1); id <= 3; id++ {
		assert.True(t, store.wallets[id].DailySpent.IsZero())
	}
}
