// Package transaction implements the money-movement engine: wallet-to-wallet
// transfers and bank-to-wallet deposits with idempotency, ordered pessimistic
// locking and an inline fraud gate.
package transaction

import (
	"context"
	stderrors "errors"
	"log"
	"time"

	"paylink/internal/errors"
	"paylink/internal/models"
	"paylink/internal/repositories"
	"paylink/internal/repositories/cache"
	"paylink/internal/services/audit"
	"paylink/internal/services/fraud"
)

type service struct {
	store  repositories.Store
	fraud  fraud.Service
	audit  audit.Service
	cache  *cache.Service
	config Config
	now    func() time.Time
}

// NewService creates the engine. cache may be nil (the idempotency fast path
// is then skipped); now may be nil to use the wall clock.
func NewService(
	store repositories.Store,
	fraudSvc fraud.Service,
	auditSvc audit.Service,
	cacheSvc *cache.Service,
	config Config,
	now func() time.Time,
) Service {
	if store == nil {
		panic("store is required")
	}
	if fraudSvc == nil {
		panic("fraud service is required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	if config.MinAmount.IsZero() {
		config = DefaultConfig()
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		store:  store,
		fraud:  fraudSvc,
		audit:  auditSvc,
		cache:  cacheSvc,
		config: config,
		now:    now,
	}
}

func (s *service) GetHistory(ctx context.Context, userID uint, page, size int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	txs, total, err := s.store.Transactions().ListByUser(userID, size, (page-1)*size)
	if err != nil {
		return nil, s.translate(err)
	}

	content := make([]View, 0, len(txs))
	for i := range txs {
		content = append(content, s.toView(&txs[i], userID))
	}

	totalPages := total / int64(size)
	if total%int64(size) > 0 {
		totalPages++
	}

	return &Page{
		Content:       content,
		PageNumber:    page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          int64(page) >= totalPages,
	}, nil
}

func (s *service) GetByReference(ctx context.Context, referenceID string, requestingUserID uint) (*View, error) {
	txn, err := s.store.Transactions().GetByReferenceID(referenceID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, errors.NotFound("transaction not found")
		}
		return nil, s.translate(err)
	}

	isSender := txn.SenderID != nil && *txn.SenderID == requestingUserID
	isReceiver := txn.ReceiverID != nil && *txn.ReceiverID == requestingUserID
	if !isSender && !isReceiver {
		return nil, ErrAccessDenied
	}

	view := s.toView(txn, requestingUserID)
	return &view, nil
}

// checkIdempotency rejects a key that already produced a transaction. The
// Redis fast path only short-circuits; the store's unique constraint remains
// the authority closing the check-then-write race.
func (s *service) checkIdempotency(ctx context.Context, key string) error {
	if s.cache != nil {
		if ref, err := s.cache.SeenIdempotencyKey(ctx, key); err == nil {
			return errors.DuplicateTransaction(ref)
		}
	}

	existing, err := s.store.Transactions().GetByIdempotencyKey(key)
	if err != nil {
		if stderrors.Is(err, repositories.ErrTransactionNotFound) {
			return nil
		}
		return s.translate(err)
	}
	return errors.DuplicateTransaction(existing.ReferenceID)
}

// rememberIdempotency records a settled key in the fast-path cache.
func (s *service) rememberIdempotency(ctx context.Context, key, referenceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.MarkIdempotencyKey(ctx, key, referenceID); err != nil {
		log.Printf("failed to cache idempotency key: %v", err)
	}
}

// resolveDuplicate handles a commit that lost the insert race on the
// idempotency key: the constraint fired because a concurrent request with the
// same key won, so the duplicate error must carry the winner's reference.
func (s *service) resolveDuplicate(key string, err error) error {
	if !stderrors.Is(err, repositories.ErrDuplicateKey) {
		return s.translate(err)
	}
	winner, lookupErr := s.store.Transactions().GetByIdempotencyKey(key)
	if lookupErr != nil {
		log.Printf("failed to resolve duplicate idempotency key: %v", lookupErr)
		return errors.DuplicateTransaction("unknown")
	}
	return errors.DuplicateTransaction(winner.ReferenceID)
}

func (s *service) invalidateWallet(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateWallet(ctx, userID); err != nil {
		log.Printf("failed to invalidate wallet cache for user %d: %v", userID, err)
	}
}

// translate maps repository errors to the domain taxonomy. Domain errors
// pass through untouched.
func (s *service) translate(err error) error {
	var domainErr *errors.DomainError
	if stderrors.As(err, &domainErr) {
		return domainErr
	}
	switch {
	case stderrors.Is(err, repositories.ErrDuplicateKey):
		// The engines resolve this through resolveDuplicate; here the
		// winning reference is not known.
		return errors.DuplicateTransaction("unknown")
	case stderrors.Is(err, repositories.ErrVersionConflict):
		return errors.ErrConcurrentModification
	case stderrors.Is(err, repositories.ErrWalletNotFound):
		return errors.NotFound("wallet not found")
	case stderrors.Is(err, repositories.ErrBankAccountNotFound):
		return errors.NotFound("bank account not found")
	case stderrors.Is(err, repositories.ErrUserNotFound):
		return errors.NotFound("user not found")
	default:
		log.Printf("transaction engine store failure: %v", err)
		return errors.ErrSystemFailure
	}
}

// toView projects a ledger row for the given reader. The post-transaction
// balance shown is the reader's own side.
func (s *service) toView(txn *models.Transaction, readerID uint) View {
	view := View{
		ID:             txn.ID,
		ReferenceID:    txn.ReferenceID,
		Amount:         txn.Amount,
		Fee:            txn.Fee,
		Type:           txn.Type,
		Status:         txn.Status,
		FraudRiskLevel: txn.FraudRiskLevel,
		Description:    txn.Description,
		FailureReason:  txn.FailureReason,
		ProcessedAt:    txn.ProcessedAt,
		CreatedAt:      txn.CreatedAt,
	}

	if txn.SenderID != nil {
		if sender, err := s.store.Users().GetByID(*txn.SenderID); err == nil {
			view.SenderName = sender.FullName
			view.SenderUpiID = sender.UpiID
		}
	}
	if txn.ReceiverID != nil {
		if receiver, err := s.store.Users().GetByID(*txn.ReceiverID); err == nil {
			view.ReceiverName = receiver.FullName
			view.ReceiverUpiID = receiver.UpiID
		}
	}

	if txn.SenderID != nil && *txn.SenderID == readerID {
		view.BalanceAfter = txn.SenderBalanceAfter
	} else if txn.ReceiverID != nil && *txn.ReceiverID == readerID {
		view.BalanceAfter = txn.ReceiverBalanceAfter
	}
	return view
}
