package transaction

import (
	"context"
	"strings"
	"sync"
	"time"

	"paylink/internal/models"
	"paylink/internal/repositories"
	"paylink/internal/services/audit"
	"paylink/internal/services/fraud"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory repositories.Store used by the engine tests. It
// reproduces the store behavior the engine relies on: blocking row locks on
// wallets and bank accounts via GetByUserIDForUpdate/GetByIDForUpdate, a
// unique constraint on idempotency keys, and transaction rollback that
// discards staged writes. Locks really block, so a lock ordering bug in the
// engine deadlocks the concurrency tests instead of passing silently.
type memStore struct {
	mu sync.Mutex

	users    map[uint]*models.User
	wallets  map[uint]*models.Wallet // keyed by user id
	accounts map[uint]*models.BankAccount
	txns     []*models.Transaction
	byRef    map[string]*models.Transaction
	byKey    map[string]*models.Transaction

	walletLocks  map[uint]*sync.Mutex
	accountLocks map[uint]*sync.Mutex

	nextTxnID uint
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uint]*models.User),
		wallets:      make(map[uint]*models.Wallet),
		accounts:     make(map[uint]*models.BankAccount),
		byRef:        make(map[string]*models.Transaction),
		byKey:        make(map[string]*models.Transaction),
		walletLocks:  make(map[uint]*sync.Mutex),
		accountLocks: make(map[uint]*sync.Mutex),
	}
}

func (m *memStore) addUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *memStore) addWallet(w *models.Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[w.UserID] = w
	m.walletLocks[w.UserID] = &sync.Mutex{}
}

func (m *memStore) addAccount(a *models.BankAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
	m.accountLocks[a.ID] = &sync.Mutex{}
}

func (m *memStore) walletBalance(userID uint) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wallets[userID].Balance
}

func (m *memStore) transactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txns)
}

func (m *memStore) lastTransaction() *models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.txns) == 0 {
		return nil
	}
	return m.txns[len(m.txns)-1]
}

func (m *memStore) Users() repositories.UserRepository               { return &memUsers{m} }
func (m *memStore) Wallets() repositories.WalletRepository           { return &memWallets{store: m} }
func (m *memStore) BankAccounts() repositories.BankAccountRepository { return &memAccounts{store: m} }
func (m *memStore) Transactions() repositories.TransactionRepository { return &memTxns{store: m} }
func (m *memStore) AuditLogs() repositories.AuditLogRepository       { return &memAuditLogs{} }

func (m *memStore) WithTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	tx := &memTx{
		parent:       m,
		walletStage:  make(map[uint]*models.Wallet),
		accountStage: make(map[uint]*models.BankAccount),
	}
	err := fn(tx)
	if err == nil {
		err = tx.commit()
	}
	tx.releaseLocks()
	return err
}

// memTx is the transactional view. Row locks taken through it are held
// until the transaction finishes; writes are staged and only applied on
// commit.
type memTx struct {
	parent       *memStore
	held         []*sync.Mutex
	walletStage  map[uint]*models.Wallet
	accountStage map[uint]*models.BankAccount
	txnStage     []*models.Transaction
}

func (t *memTx) Users() repositories.UserRepository               { return &memUsers{t.parent} }
func (t *memTx) Wallets() repositories.WalletRepository           { return &memWallets{store: t.parent, tx: t} }
func (t *memTx) BankAccounts() repositories.BankAccountRepository { return &memAccounts{store: t.parent, tx: t} }
func (t *memTx) Transactions() repositories.TransactionRepository { return &memTxns{store: t.parent, tx: t} }
func (t *memTx) AuditLogs() repositories.AuditLogRepository       { return &memAuditLogs{} }

func (t *memTx) WithTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	return fn(t)
}

func (t *memTx) commit() error {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()

	for _, txn := range t.txnStage {
		if txn.IdempotencyKey != nil {
			if _, dup := t.parent.byKey[*txn.IdempotencyKey]; dup {
				return repositories.ErrDuplicateKey
			}
		}
	}

	for userID, w := range t.walletStage {
		*t.parent.wallets[userID] = *w
	}
	for id, a := range t.accountStage {
		*t.parent.accounts[id] = *a
	}
	for _, txn := range t.txnStage {
		t.parent.insertTxnLocked(txn)
	}
	return nil
}

func (t *memTx) releaseLocks() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}

func (m *memStore) insertTxnLocked(txn *models.Transaction) {
	m.nextTxnID++
	txn.ID = m.nextTxnID
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	m.txns = append(m.txns, txn)
	m.byRef[txn.ReferenceID] = txn
	if txn.IdempotencyKey != nil {
		m.byKey[*txn.IdempotencyKey] = txn
	}
}

type memUsers struct{ store *memStore }

func (r *memUsers) Create(user *models.User) error {
	r.store.addUser(user)
	return nil
}

func (r *memUsers) GetByID(id uint) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUsers) GetByIdentifier(identifier string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.UpiID == identifier || u.Phone == identifier || strings.EqualFold(u.Email, identifier) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memUsers) GetByEmail(email string) (*models.User, error) {
	return r.GetByIdentifier(email)
}

func (r *memUsers) Update(user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *memUsers) UpdateStatus(id uint, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (r *memUsers) IncrementFailedLoginAttempts(id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[id]; ok {
		u.FailedLoginAttempts++
	}
	return nil
}

func (r *memUsers) ResetFailedLoginAttempts(id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[id]; ok {
		u.FailedLoginAttempts = 0
	}
	return nil
}

func (r *memUsers) IncrementTokenVersion(id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[id]; ok {
		u.TokenVersion++
	}
	return nil
}

func (r *memUsers) List(limit, offset int) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (r *memUsers) Count() (int64, error) { return 0, nil }

func (r *memUsers) CountByStatus(status string) (int64, error) { return 0, nil }

type memWallets struct {
	store *memStore
	tx    *memTx
}

func (r *memWallets) Create(wallet *models.Wallet) error {
	r.store.addWallet(wallet)
	return nil
}

func (r *memWallets) GetByUserID(userID uint) (*models.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	copied := *w
	return &copied, nil
}

func (r *memWallets) GetByUserIDForUpdate(userID uint) (*models.Wallet, error) {
	if r.tx == nil {
		return nil, repositories.ErrWalletNotFound
	}

	r.store.mu.Lock()
	lock, ok := r.store.walletLocks[userID]
	r.store.mu.Unlock()
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}

	// Blocks like SELECT ... FOR UPDATE until the holder commits.
	lock.Lock()
	r.tx.held = append(r.tx.held, lock)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *r.store.wallets[userID]
	return &copied, nil
}

func (r *memWallets) Update(wallet *models.Wallet) error {
	if r.tx != nil {
		copied := *wallet
		r.tx.walletStage[wallet.UserID] = &copied
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *wallet
	r.store.wallets[wallet.UserID] = &copied
	return nil
}

func (r *memWallets) ResetDailySpent() (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, w := range r.store.wallets {
		if !w.DailySpent.IsZero() {
			w.DailySpent = decimal.Zero
			count++
		}
	}
	return count, nil
}

type memAccounts struct {
	store *memStore
	tx    *memTx
}

func (r *memAccounts) Create(account *models.BankAccount) error {
	r.store.addAccount(account)
	return nil
}

func (r *memAccounts) GetByID(id uint) (*models.BankAccount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.accounts[id]
	if !ok {
		return nil, repositories.ErrBankAccountNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *memAccounts) GetByIDForUpdate(id uint) (*models.BankAccount, error) {
	if r.tx == nil {
		return nil, repositories.ErrBankAccountNotFound
	}

	r.store.mu.Lock()
	lock, ok := r.store.accountLocks[id]
	r.store.mu.Unlock()
	if !ok {
		return nil, repositories.ErrBankAccountNotFound
	}

	lock.Lock()
	r.tx.held = append(r.tx.held, lock)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *r.store.accounts[id]
	return &copied, nil
}

func (r *memAccounts) Update(account *models.BankAccount) error {
	if r.tx != nil {
		copied := *account
		r.tx.accountStage[account.ID] = &copied
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *account
	r.store.accounts[account.ID] = &copied
	return nil
}

func (r *memAccounts) GetByUserID(userID uint) ([]models.BankAccount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.BankAccount
	for _, a := range r.store.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAccounts) Delete(id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.accounts, id)
	return nil
}

func (r *memAccounts) ExistsByAccountNumber(accountNumber string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.accounts {
		if a.AccountNumber == accountNumber {
			return true, nil
		}
	}
	return false, nil
}

type memTxns struct {
	store *memStore
	tx    *memTx
}

func (r *memTxns) Create(txn *models.Transaction) error {
	if r.tx != nil {
		r.tx.txnStage = append(r.tx.txnStage, txn)
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if txn.IdempotencyKey != nil {
		if _, dup := r.store.byKey[*txn.IdempotencyKey]; dup {
			return repositories.ErrDuplicateKey
		}
	}
	r.store.insertTxnLocked(txn)
	return nil
}

func (r *memTxns) GetByReferenceID(referenceID string) (*models.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn, ok := r.store.byRef[referenceID]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	copied := *txn
	return &copied, nil
}

func (r *memTxns) GetByIdempotencyKey(key string) (*models.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn, ok := r.store.byKey[key]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	copied := *txn
	return &copied, nil
}

func (r *memTxns) ListByUser(userID uint, limit, offset int) ([]models.Transaction, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var matching []models.Transaction
	for i := len(r.store.txns) - 1; i >= 0; i-- {
		txn := r.store.txns[i]
		sender := txn.SenderID != nil && *txn.SenderID == userID
		receiver := txn.ReceiverID != nil && *txn.ReceiverID == userID
		if sender || receiver {
			matching = append(matching, *txn)
		}
	}
	total := int64(len(matching))
	if offset >= len(matching) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matching) {
		end = len(matching)
	}
	return matching[offset:end], total, nil
}

func (r *memTxns) ListFlagged(limit, offset int) ([]models.Transaction, int64, error) {
	return nil, 0, nil
}

func (r *memTxns) CountRecentByUser(userID uint, since time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, txn := range r.store.txns {
		if txn.SenderID != nil && *txn.SenderID == userID &&
			txn.Status != models.TransactionStatusFailed &&
			!txn.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *memTxns) SumVolumeSince(since time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *memTxns) Count() (int64, error)        { return 0, nil }
func (r *memTxns) CountFlagged() (int64, error) { return 0, nil }

type memAuditLogs struct{}

func (r *memAuditLogs) Create(entry *models.AuditLog) error { return nil }

// nopAudit satisfies audit.Service without a worker goroutine.
type nopAudit struct{}

func (nopAudit) Record(event audit.Event) {}
func (nopAudit) Close()                   {}

// stubFraud returns a fixed assessment.
type stubFraud struct {
	assessment fraud.Assessment
	err        error
}

func (f *stubFraud) Assess(senderID, receiverID uint, amount decimal.Decimal) (fraud.Assessment, error) {
	return f.assessment, f.err
}

// barrierFraud holds every assessment until the expected number of callers
// have reached the fraud gate, which sits after the idempotency pre-check.
type barrierFraud struct {
	mu       sync.Mutex
	arrived  int
	expected int
	release  chan struct{}
}

func newBarrierFraud(expected int) *barrierFraud {
	return &barrierFraud{expected: expected, release: make(chan struct{})}
}

func (f *barrierFraud) Assess(senderID, receiverID uint, amount decimal.Decimal) (fraud.Assessment, error) {
	f.mu.Lock()
	f.arrived++
	if f.arrived == f.expected {
		close(f.release)
	}
	f.mu.Unlock()
	<-f.release
	return fraud.Assessment{RiskLevel: models.RiskLevelLow}, nil
}
