package repositories

import (
	"errors"
	"fmt"
	"time"

	"paylink/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func (r *transactionRepository) Create(tx *models.Transaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByReferenceID(referenceID string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.Where("reference_id = ?", referenceID).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) GetByIdempotencyKey(key string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.Where("idempotency_key = ?", key).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) ListByUser(userID uint, limit, offset int) ([]models.Transaction, int64, error) {
	var total int64
	base := r.db.Model(&models.Transaction{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []models.Transaction
	err := r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, total, nil
}

func (r *transactionRepository) ListFlagged(limit, offset int) ([]models.Transaction, int64, error) {
	var total int64
	if err := r.db.Model(&models.Transaction{}).Where("is_flagged = true").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count flagged transactions: %w", err)
	}

	var txs []models.Transaction
	err := r.db.Where("is_flagged = true").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list flagged transactions: %w", err)
	}
	return txs, total, nil
}

func (r *transactionRepository) CountRecentByUser(userID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).
		Where("sender_id = ? AND created_at >= ? AND status <> ?",
			userID, since, models.TransactionStatusFailed).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recent transactions: %w", err)
	}
	return count, nil
}

func (r *transactionRepository) SumVolumeSince(since time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.Model(&models.Transaction{}).
		Where("status = ? AND created_at >= ?", models.TransactionStatusSuccess, since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum volume: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *transactionRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Transaction{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *transactionRepository) CountFlagged() (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).
		Where("is_flagged = true").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count flagged transactions: %w", err)
	}
	return count, nil
}
