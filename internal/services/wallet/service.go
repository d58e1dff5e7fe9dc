// Package wallet exposes read access to wallet balances and the daily-limit
// reset used by the midnight scheduler. Balance mutation lives in the
// transaction engine; nothing here writes balances.
package wallet

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"

	"paylink/internal/errors"
	"paylink/internal/models"
	"paylink/internal/repositories"
	"paylink/internal/repositories/cache"

	"github.com/shopspring/decimal"
)

// View is the wallet projection returned to clients.
type View struct {
	ID             uint            `json:"id"`
	Balance        decimal.Decimal `json:"balance"`
	DailySpent     decimal.Decimal `json:"daily_spent"`
	DailyLimit     decimal.Decimal `json:"daily_limit"`
	AvailableToday decimal.Decimal `json:"available_today"`
}

type Service interface {
	GetWallet(ctx context.Context, userID uint) (*View, error)
	// ResetDailyLimits zeroes daily_spent across all wallets. Called by
	// the midnight scheduler, exactly once per calendar day.
	ResetDailyLimits(ctx context.Context) (int64, error)
}

type service struct {
	store repositories.Store
	cache *cache.Service
}

// NewService creates a wallet read service. cache may be nil.
func NewService(store repositories.Store, cacheSvc *cache.Service) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store, cache: cacheSvc}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*View, error) {
	var wallet *models.Wallet

	if s.cache != nil {
		if cached, err := s.cache.GetWallet(ctx, userID); err == nil {
			wallet = cached
		}
	}

	if wallet == nil {
		var err error
		wallet, err = s.store.Wallets().GetByUserID(userID)
		if err != nil {
			if stderrors.Is(err, repositories.ErrWalletNotFound) {
				return nil, errors.NotFound("wallet not found")
			}
			return nil, fmt.Errorf("failed to get wallet: %w", err)
		}
		if s.cache != nil {
			if err := s.cache.SetWallet(ctx, wallet); err != nil {
				log.Printf("failed to cache wallet for user %d: %v", userID, err)
			}
		}
	}

	available := wallet.DailyLimit.Sub(wallet.DailySpent)
	if available.IsNegative() {
		available = decimal.Zero
	}

	return &View{
		ID:             wallet.ID,
		Balance:        wallet.Balance,
		DailySpent:     wallet.DailySpent,
		DailyLimit:     wallet.DailyLimit,
		AvailableToday: available,
	}, nil
}

func (s *service) ResetDailyLimits(ctx context.Context) (int64, error) {
	updated, err := s.store.Wallets().ResetDailySpent()
	if err != nil {
		return 0, fmt.Errorf("failed to reset daily limits: %w", err)
	}
	log.Printf("daily limit reset complete, wallets updated: %d", updated)
	return updated, nil
}
