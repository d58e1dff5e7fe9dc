// Package bankaccount manages the simulated bank accounts that fund wallet
// deposits. Account numbers are only ever exposed masked.
package bankaccount

import (
	stderrors "errors"
	"log"
	"regexp"

	"paylink/internal/config"
	"paylink/internal/errors"
	"paylink/internal/models"
	"paylink/internal/repositories"
	"paylink/internal/services/audit"

	"github.com/shopspring/decimal"
)

var accountNumberPattern = regexp.MustCompile(`^\d{9,18}$`)

var ErrAccountNotOwned = errors.Unauthorized("bank account does not belong to you")

type LinkRequest struct {
	UserID            uint
	BankName          string
	AccountNumber     string
	IfscCode          string
	AccountHolderName string
	IsPrimary         bool
}

type View struct {
	ID            uint            `json:"id"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	IfscCode      string          `json:"ifsc_code"`
	IsPrimary     bool            `json:"is_primary"`
	BankBalance   decimal.Decimal `json:"bank_balance"`
}

type Service interface {
	Link(req LinkRequest) (*View, error)
	List(userID uint) ([]View, error)
	Remove(userID, accountID uint) error
}

type service struct {
	store          repositories.Store
	audit          audit.Service
	defaultBalance decimal.Decimal
}

func NewService(store repositories.Store, auditSvc audit.Service) Service {
	if store == nil {
		panic("store is required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	return &service{
		store:          store,
		audit:          auditSvc,
		defaultBalance: config.GetDecimalEnv("BANK_DEFAULT_BALANCE", "50000.00"),
	}
}

func (s *service) Link(req LinkRequest) (*View, error) {
	if req.BankName == "" {
		return nil, errors.Validation("bank name is required")
	}
	if !accountNumberPattern.MatchString(req.AccountNumber) {
		return nil, errors.Validation("account number must be 9 to 18 digits")
	}
	if req.AccountHolderName == "" {
		return nil, errors.Validation("account holder name is required")
	}

	exists, err := s.store.BankAccounts().ExistsByAccountNumber(req.AccountNumber)
	if err != nil {
		log.Printf("failed to check account number: %v", err)
		return nil, errors.ErrSystemFailure
	}
	if exists {
		return nil, errors.Validation("account number already linked")
	}

	existing, err := s.store.BankAccounts().GetByUserID(req.UserID)
	if err != nil {
		log.Printf("failed to list bank accounts for user %d: %v", req.UserID, err)
		return nil, errors.ErrSystemFailure
	}

	account := &models.BankAccount{
		UserID:            req.UserID,
		BankName:          req.BankName,
		AccountNumber:     req.AccountNumber,
		IfscCode:          req.IfscCode,
		AccountHolderName: req.AccountHolderName,
		// First linked account is always primary.
		IsPrimary:   req.IsPrimary || len(existing) == 0,
		BankBalance: s.defaultBalance,
	}
	if err := s.store.BankAccounts().Create(account); err != nil {
		if stderrors.Is(err, repositories.ErrDuplicateKey) {
			return nil, errors.Validation("account number already linked")
		}
		log.Printf("failed to link bank account: %v", err)
		return nil, errors.ErrSystemFailure
	}

	s.audit.Record(audit.Event{
		UserID:     req.UserID,
		Action:     "BANK_ACCOUNT_LINKED",
		Details:    "linked account " + account.MaskedAccountNumber(),
		EntityType: "BankAccount",
		EntityID:   &account.ID,
		Success:    true,
	})

	view := toView(account)
	return &view, nil
}

func (s *service) List(userID uint) ([]View, error) {
	accounts, err := s.store.BankAccounts().GetByUserID(userID)
	if err != nil {
		log.Printf("failed to list bank accounts for user %d: %v", userID, err)
		return nil, errors.ErrSystemFailure
	}
	views := make([]View, 0, len(accounts))
	for i := range accounts {
		views = append(views, toView(&accounts[i]))
	}
	return views, nil
}

func (s *service) Remove(userID, accountID uint) error {
	account, err := s.store.BankAccounts().GetByID(accountID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrBankAccountNotFound) {
			return errors.NotFound("bank account not found")
		}
		log.Printf("failed to load bank account %d: %v", accountID, err)
		return errors.ErrSystemFailure
	}
	if account.UserID != userID {
		return ErrAccountNotOwned
	}

	if err := s.store.BankAccounts().Delete(accountID); err != nil {
		log.Printf("failed to remove bank account %d: %v", accountID, err)
		return errors.ErrSystemFailure
	}

	s.audit.Record(audit.Event{
		UserID:     userID,
		Action:     "BANK_ACCOUNT_REMOVED",
		Details:    "removed account " + account.MaskedAccountNumber(),
		EntityType: "BankAccount",
		EntityID:   &accountID,
		Success:    true,
	})
	return nil
}

func toView(account *models.BankAccount) View {
	return View{
		ID:            account.ID,
		BankName:      account.BankName,
		AccountNumber: account.MaskedAccountNumber(),
		IfscCode:      account.IfscCode,
		IsPrimary:     account.IsPrimary,
		BankBalance:   account.BankBalance,
	}
}
