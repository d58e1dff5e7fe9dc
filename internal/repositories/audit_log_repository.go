package repositories

import (
	"fmt"

	"paylink/internal/models"

	"gorm.io/gorm"
)

type auditLogRepository struct {
	db *gorm.DB
}

func (r *auditLogRepository) Create(entry *models.AuditLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}
