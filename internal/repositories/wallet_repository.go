package repositories

import (
	"errors"
	"fmt"
	"time"

	"paylink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func (r *walletRepository) Create(wallet *models.Wallet) error {
	if err := r.db.Create(wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByUserIDForUpdate(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Update(wallet *models.Wallet) error {
	result := r.db.Model(&models.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(map[string]interface{}{
			"balance":     wallet.Balance,
			"daily_spent": wallet.DailySpent,
			"daily_limit": wallet.DailyLimit,
			"version":     wallet.Version + 1,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	wallet.Version++
	return nil
}

func (r *walletRepository) ResetDailySpent() (int64, error) {
	result := r.db.Model(&models.Wallet{}).
		Where("daily_spent > 0").
		Updates(map[string]interface{}{
			"daily_spent": 0,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reset daily spent: %w", result.Error)
	}
	return result.RowsAffected, nil
}
