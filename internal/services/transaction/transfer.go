package transaction

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"paylink/internal/errors"
	"paylink/internal/models"
	"paylink/internal/repositories"
	"paylink/internal/services/audit"
	"paylink/internal/services/fraud"

	"golang.org/x/crypto/bcrypt"
)

var pinPattern = regexp.MustCompile(`^\d{4}(\d{2})?$`)

const (
	minIdempotencyKeyLen = 10
	maxIdempotencyKeyLen = 100
)

// Transfer runs the wallet-to-wallet state machine:
// idempotency check, PIN verification, receiver resolution, fraud gate,
// ordered wallet locking, balance/limit validation, atomic debit/credit and
// ledger append. The fraud-blocked path is the only failure that persists a
// record; every other pre-commit failure leaves the ledger untouched.
func (s *service) Transfer(ctx context.Context, req TransferRequest) (*View, error) {
	if err := s.validateTransfer(req); err != nil {
		return nil, err
	}

	if err := s.checkIdempotency(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	}

	sender, err := s.store.Users().GetByID(req.SenderID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, s.translate(err)
	}

	if sender.UpiPin == nil {
		return nil, ErrPinNotSet
	}
	// bcrypt comparison is not vulnerable to timing on the plaintext.
	if err := bcrypt.CompareHashAndPassword([]byte(*sender.UpiPin), []byte(req.Pin)); err != nil {
		return nil, ErrIncorrectPin
	}

	receiver, err := s.store.Users().GetByIdentifier(req.ReceiverIdentifier)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, s.translate(err)
	}
	if receiver.ID == sender.ID {
		return nil, ErrSelfTransfer
	}

	assessment, err := s.fraud.Assess(sender.ID, receiver.ID, req.Amount)
	if err != nil {
		return nil, s.translate(err)
	}
	if assessment.ShouldBlock {
		s.recordBlockedTransfer(ctx, sender, receiver, req, assessment)
		return nil, errors.ErrFraudBlocked
	}

	var txn *models.Transaction
	err = s.store.WithTransaction(ctx, func(store repositories.Store) error {
		// Lock both wallets lowest user id first. Every code path that
		// locks two wallets uses this order, which rules out circular
		// wait between concurrent transfers.
		firstID, secondID := sender.ID, receiver.ID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}

		first, err := store.Wallets().GetByUserIDForUpdate(firstID)
		if err != nil {
			return err
		}
		second, err := store.Wallets().GetByUserIDForUpdate(secondID)
		if err != nil {
			return err
		}

		senderWallet, receiverWallet := first, second
		if sender.ID != firstID {
			senderWallet, receiverWallet = second, first
		}

		// Validation happens under the locks, on fresh state.
		if !senderWallet.HasSufficientBalance(req.Amount) {
			return errors.ErrInsufficientFunds
		}
		if senderWallet.IsDailyLimitExceeded(req.Amount) {
			return errors.ErrDailyLimitExceeded
		}

		senderBefore := senderWallet.Balance
		receiverBefore := receiverWallet.Balance

		senderWallet.Debit(req.Amount)
		receiverWallet.Credit(req.Amount)

		if err := store.Wallets().Update(senderWallet); err != nil {
			return err
		}
		if err := store.Wallets().Update(receiverWallet); err != nil {
			return err
		}

		processedAt := s.now()
		key := req.IdempotencyKey
		txn = &models.Transaction{
			ReferenceID:           newReferenceID(),
			IdempotencyKey:        &key,
			SenderID:              &sender.ID,
			ReceiverID:            &receiver.ID,
			Amount:                req.Amount,
			Type:                  models.TransactionTypeTransfer,
			Status:                models.TransactionStatusSuccess,
			FraudRiskLevel:        assessment.RiskLevel,
			FraudScore:            assessment.Score,
			IsFlagged:             assessment.ShouldFlag,
			Description:           req.Description,
			SenderBalanceBefore:   &senderBefore,
			SenderBalanceAfter:    &senderWallet.Balance,
			ReceiverBalanceBefore: &receiverBefore,
			ReceiverBalanceAfter:  &receiverWallet.Balance,
			ProcessedAt:           &processedAt,
			IPAddress:             req.ClientIP,
		}
		return store.Transactions().Create(txn)
	})
	if err != nil {
		return nil, s.resolveDuplicate(req.IdempotencyKey, err)
	}

	s.invalidateWallet(ctx, sender.ID)
	s.invalidateWallet(ctx, receiver.ID)
	s.rememberIdempotency(ctx, req.IdempotencyKey, txn.ReferenceID)

	s.audit.Record(audit.Event{
		UserID: sender.ID,
		Action: "TRANSFER_SUCCESS",
		Details: fmt.Sprintf("%s to %s (ref: %s)",
			req.Amount.StringFixed(2), receiver.UpiID, txn.ReferenceID),
		EntityType: "Transaction",
		EntityID:   &txn.ID,
		IPAddress:  req.ClientIP,
		Success:    true,
	})

	view := s.toView(txn, sender.ID)
	return &view, nil
}

// recordBlockedTransfer persists the FAILED, flagged evidence record for a
// fraud-blocked attempt. The write is best effort: a failure here must not
// mask the block itself.
func (s *service) recordBlockedTransfer(ctx context.Context, sender, receiver *models.User, req TransferRequest, assessment fraud.Assessment) {
	key := req.IdempotencyKey
	txn := &models.Transaction{
		ReferenceID:    newReferenceID(),
		IdempotencyKey: &key,
		SenderID:       &sender.ID,
		ReceiverID:     &receiver.ID,
		Amount:         req.Amount,
		Type:           models.TransactionTypeTransfer,
		Status:         models.TransactionStatusFailed,
		FraudRiskLevel: assessment.RiskLevel,
		FraudScore:     assessment.Score,
		IsFlagged:      true,
		FailureReason:  "blocked by fraud detection: " + strings.Join(assessment.Reasons, ";"),
		IPAddress:      req.ClientIP,
	}
	if err := s.store.Transactions().Create(txn); err != nil {
		log.Printf("failed to persist blocked transaction record: %v", err)
	} else {
		s.rememberIdempotency(ctx, req.IdempotencyKey, txn.ReferenceID)
	}

	s.audit.Record(audit.Event{
		UserID:     sender.ID,
		Action:     "TRANSACTION_BLOCKED",
		Details:    fmt.Sprintf("fraud score: %d", assessment.Score),
		EntityType: "Transaction",
		IPAddress:  req.ClientIP,
		Success:    false,
	})
}

func (s *service) validateTransfer(req TransferRequest) error {
	if req.ReceiverIdentifier == "" {
		return errors.Validation("receiver identifier is required")
	}
	if req.Amount.LessThan(s.config.MinAmount) {
		return errors.Validation("minimum transfer amount is " + s.config.MinAmount.StringFixed(2))
	}
	if req.Amount.GreaterThan(s.config.MaxTransferAmount) {
		return errors.Validation("maximum single transfer is " + s.config.MaxTransferAmount.StringFixed(2))
	}
	if !pinPattern.MatchString(req.Pin) {
		return errors.Validation("invalid UPI PIN format")
	}
	if len(req.IdempotencyKey) < minIdempotencyKeyLen || len(req.IdempotencyKey) > maxIdempotencyKeyLen {
		return errors.Validation("idempotency key must be 10-100 characters")
	}
	if len(req.Description) > 200 {
		return errors.Validation("description too long")
	}
	return nil
}
