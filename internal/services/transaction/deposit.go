package transaction

import (
	"context"
	stderrors "errors"
	"fmt"

	"paylink/internal/errors"
	"paylink/internal/models"
	"paylink/internal/repositories"
	"paylink/internal/services/audit"
)

// Deposit moves funds from a linked (simulated) bank account into the
// user's wallet. Same idempotency and locking discipline as Transfer, no
// fraud gate. Lock order is bank account first, then wallet, consistently
// across all deposit paths.
func (s *service) Deposit(ctx context.Context, req DepositRequest) (*View, error) {
	if err := s.validateDeposit(req); err != nil {
		return nil, err
	}

	if err := s.checkIdempotency(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByID(req.UserID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return nil, errors.NotFound("user not found")
		}
		return nil, s.translate(err)
	}

	var txn *models.Transaction
	var bankName string
	err = s.store.WithTransaction(ctx, func(store repositories.Store) error {
		account, err := store.BankAccounts().GetByIDForUpdate(req.BankAccountID)
		if err != nil {
			return err
		}
		if account.UserID != user.ID {
			return ErrBankAccountNotOwned
		}
		if account.BankBalance.LessThan(req.Amount) {
			return ErrInsufficientBankBalance
		}
		bankName = account.BankName

		wallet, err := store.Wallets().GetByUserIDForUpdate(user.ID)
		if err != nil {
			return err
		}

		walletBefore := wallet.Balance

		account.BankBalance = account.BankBalance.Sub(req.Amount)
		wallet.Credit(req.Amount)

		if err := store.BankAccounts().Update(account); err != nil {
			return err
		}
		if err := store.Wallets().Update(wallet); err != nil {
			return err
		}

		processedAt := s.now()
		key := req.IdempotencyKey
		txn = &models.Transaction{
			ReferenceID:           newReferenceID(),
			IdempotencyKey:        &key,
			ReceiverID:            &user.ID,
			Amount:                req.Amount,
			Type:                  models.TransactionTypeDeposit,
			Status:                models.TransactionStatusSuccess,
			Description:           "add money from " + account.BankName,
			ReceiverBalanceBefore: &walletBefore,
			ReceiverBalanceAfter:  &wallet.Balance,
			ProcessedAt:           &processedAt,
			IPAddress:             req.ClientIP,
		}
		return store.Transactions().Create(txn)
	})
	if err != nil {
		return nil, s.resolveDuplicate(req.IdempotencyKey, err)
	}

	s.invalidateWallet(ctx, user.ID)
	s.rememberIdempotency(ctx, req.IdempotencyKey, txn.ReferenceID)

	s.audit.Record(audit.Event{
		UserID: user.ID,
		Action: "DEPOSIT_SUCCESS",
		Details: fmt.Sprintf("%s added from %s (ref: %s)",
			req.Amount.StringFixed(2), bankName, txn.ReferenceID),
		EntityType: "Transaction",
		EntityID:   &txn.ID,
		IPAddress:  req.ClientIP,
		Success:    true,
	})

	view := s.toView(txn, user.ID)
	return &view, nil
}

func (s *service) validateDeposit(req DepositRequest) error {
	if req.BankAccountID == 0 {
		return errors.Validation("bank account id is required")
	}
	if req.Amount.LessThan(s.config.MinAmount) {
		return errors.Validation("minimum deposit is " + s.config.MinAmount.StringFixed(2))
	}
	if req.Amount.GreaterThan(s.config.MaxDepositAmount) {
		return errors.Validation("maximum deposit is " + s.config.MaxDepositAmount.StringFixed(2))
	}
	if len(req.IdempotencyKey) < minIdempotencyKeyLen || len(req.IdempotencyKey) > maxIdempotencyKeyLen {
		return errors.Validation("idempotency key must be 10-100 characters")
	}
	return nil
}
