package repositories

import (
	"errors"
	"fmt"
	"time"

	"paylink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bankAccountRepository struct {
	db *gorm.DB
}

func (r *bankAccountRepository) Create(account *models.BankAccount) error {
	if err := r.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create bank account: %w", err)
	}
	return nil
}

func (r *bankAccountRepository) GetByID(id uint) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := r.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}
	return &account, nil
}

func (r *bankAccountRepository) GetByIDForUpdate(id uint) (*models.BankAccount, error) {
	var account models.BankAccount
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock bank account: %w", err)
	}
	return &account, nil
}

func (r *bankAccountRepository) GetByUserID(userID uint) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	err := r.db.Where("user_id = ?", userID).
		Order("is_primary DESC, created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	return accounts, nil
}

func (r *bankAccountRepository) Update(account *models.BankAccount) error {
	result := r.db.Model(&models.BankAccount{}).
		Where("id = ? AND version = ?", account.ID, account.Version).
		Updates(map[string]interface{}{
			"bank_balance": account.BankBalance,
			"status":       account.Status,
			"is_primary":   account.IsPrimary,
			"version":      account.Version + 1,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update bank account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	account.Version++
	return nil
}

func (r *bankAccountRepository) Delete(id uint) error {
	result := r.db.Delete(&models.BankAccount{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete bank account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBankAccountNotFound
	}
	return nil
}

func (r *bankAccountRepository) ExistsByAccountNumber(accountNumber string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BankAccount{}).
		Where("account_number = ?", accountNumber).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check account number: %w", err)
	}
	return count > 0, nil
}
