// Package admin exposes the operational surface: dashboard stats, account
// freezing and review of fraud-flagged transactions.
package admin

import (
	stderrors "errors"
	"log"
	"time"

	"paylink/internal/errors"
	"paylink/internal/models"
	"paylink/internal/repositories"
	"paylink/internal/services/audit"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalUsers          int64           `json:"total_users"`
	ActiveUsers         int64           `json:"active_users"`
	FrozenUsers         int64           `json:"frozen_users"`
	TotalTransactions   int64           `json:"total_transactions"`
	FlaggedTransactions int64           `json:"flagged_transactions"`
	TodayVolume         decimal.Decimal `json:"today_volume"`
}

type UserSummary struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	UpiID    string `json:"upi_id"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type Service interface {
	Dashboard() (*DashboardStats, error)
	ListUsers(page, pageSize int) ([]UserSummary, int64, error)
	// FreezeUser blocks the account from all money movement and revokes
	// its refresh tokens.
	FreezeUser(adminID, userID uint) error
	UnfreezeUser(adminID, userID uint) error
	ListFlagged(page, pageSize int) ([]models.Transaction, int64, error)
}

type service struct {
	store repositories.Store
	audit audit.Service
	now   func() time.Time
}

func NewService(store repositories.Store, auditSvc audit.Service, now func() time.Time) Service {
	if store == nil {
		panic("store is required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{store: store, audit: auditSvc, now: now}
}

func (s *service) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalUsers, err = s.store.Users().Count(); err != nil {
		return nil, s.fail("count users", err)
	}
	if stats.ActiveUsers, err = s.store.Users().CountByStatus(models.AccountStatusActive); err != nil {
		return nil, s.fail("count active users", err)
	}
	if stats.FrozenUsers, err = s.store.Users().CountByStatus(models.AccountStatusFrozen); err != nil {
		return nil, s.fail("count frozen users", err)
	}
	if stats.TotalTransactions, err = s.store.Transactions().Count(); err != nil {
		return nil, s.fail("count transactions", err)
	}
	if stats.FlaggedTransactions, err = s.store.Transactions().CountFlagged(); err != nil {
		return nil, s.fail("count flagged transactions", err)
	}

	midnight := startOfDay(s.now())
	if stats.TodayVolume, err = s.store.Transactions().SumVolumeSince(midnight); err != nil {
		return nil, s.fail("sum today volume", err)
	}
	return stats, nil
}

func (s *service) ListUsers(page, pageSize int) ([]UserSummary, int64, error) {
	limit, offset := clampPage(page, pageSize)
	users, total, err := s.store.Users().List(limit, offset)
	if err != nil {
		return nil, 0, s.fail("list users", err)
	}
	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, UserSummary{
			ID:       u.ID,
			FullName: u.FullName,
			Email:    u.Email,
			UpiID:    u.UpiID,
			Role:     u.Role,
			Status:   u.Status,
		})
	}
	return summaries, total, nil
}

func (s *service) FreezeUser(adminID, userID uint) error {
	return s.setStatus(adminID, userID, models.AccountStatusFrozen, "ACCOUNT_FROZEN")
}

func (s *service) UnfreezeUser(adminID, userID uint) error {
	return s.setStatus(adminID, userID, models.AccountStatusActive, "ACCOUNT_UNFROZEN")
}

func (s *service) setStatus(adminID, userID uint, status, action string) error {
	user, err := s.store.Users().GetByID(userID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return errors.NotFound("user not found")
		}
		return s.fail("load user", err)
	}
	if user.Role == models.RoleAdmin {
		return errors.Validation("cannot change status of an admin account")
	}

	if err := s.store.Users().UpdateStatus(userID, status); err != nil {
		return s.fail("update user status", err)
	}
	if status == models.AccountStatusFrozen {
		// Force re-authentication to fail on the next refresh.
		if err := s.store.Users().IncrementTokenVersion(userID); err != nil {
			log.Printf("failed to revoke tokens for user %d: %v", userID, err)
		}
	}

	s.audit.Record(audit.Event{
		UserID:     adminID,
		Action:     action,
		Details:    "status changed to " + status,
		EntityType: "User",
		EntityID:   &userID,
		Success:    true,
	})
	return nil
}

func (s *service) ListFlagged(page, pageSize int) ([]models.Transaction, int64, error) {
	limit, offset := clampPage(page, pageSize)
	txns, total, err := s.store.Transactions().ListFlagged(limit, offset)
	if err != nil {
		return nil, 0, s.fail("list flagged transactions", err)
	}
	return txns, total, nil
}

func (s *service) fail(op string, err error) error {
	log.Printf("admin: failed to %s: %v", op, err)
	return errors.ErrSystemFailure
}

func clampPage(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
