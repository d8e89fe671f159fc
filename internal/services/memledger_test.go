package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/sbilibin2017/gw-ledger/internal/repositories"
	"github.com/shopspring/decimal"
)

// memLedger is an in-memory ledger store. A unit works on copies and publishes them only on success.
type memLedger struct {
	mu        sync.Mutex
	accounts  map[int64]models.Account
	txns      map[int64]models.Transaction
	nextID    int64
	conflicts int // units rejected with ErrConflict before running
	pageLoads int // finder calls

	failMethod string // LedgerTx method that fails once on its failCall-th call
	failCall   int
	failErr    error
	calls      map[string]int
}

func newMemLedger() *memLedger {
	return &memLedger{
		accounts: map[int64]models.Account{},
		txns:     map[int64]models.Transaction{},
		nextID:   1000,
		calls:    map[string]int{},
	}
}

func (m *memLedger) addAccount(id int64, number string, typ models.AccountType, balance string, status models.AccountStatus) {
	m.accounts[id] = models.Account{
		ID:               id,
		AccountNumber:    number,
		Type:             typ,
		Balance:          decimal.RequireFromString(balance),
		AvailableBalance: decimal.RequireFromString(balance),
		Status:           status,
	}
}

func (m *memLedger) setRate(id int64, rate string) {
	a := m.accounts[id]
	a.InterestRate = decimal.NewNullDecimal(decimal.RequireFromString(rate))
	m.accounts[id] = a
}

func (m *memLedger) addTransaction(t models.Transaction) {
	m.txns[t.ID] = t
}

func (m *memLedger) account(id int64) models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id]
}

func (m *memLedger) transaction(id int64) models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txns[id]
}

func (m *memLedger) transactionsOfType(typ models.TransactionType) []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.txns {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

func (m *memLedger) AtomicUpdate(ctx context.Context, fn func(ctx context.Context, tx repositories.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conflicts > 0 {
		m.conflicts--
		return models.ErrConflict
	}

	tx := &memTx{
		parent:   m,
		accounts: make(map[int64]models.Account, len(m.accounts)),
		txns:     make(map[int64]models.Transaction, len(m.txns)),
		nextID:   m.nextID,
	}
	for k, v := range m.accounts {
		tx.accounts[k] = v
	}
	for k, v := range m.txns {
		tx.txns[k] = v
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	m.accounts, m.txns, m.nextID = tx.accounts, tx.txns, tx.nextID
	return nil
}

func (m *memLedger) GetAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.AccountNumber == number {
			return &a, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (m *memLedger) FindAccountsByStatusAndType(ctx context.Context, status models.AccountStatus, types []models.AccountType, afterID int64, limit int) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageLoads++
	var out []models.Account
	for _, a := range m.accounts {
		if a.Status != status || a.ID <= afterID {
			continue
		}
		if len(types) > 0 && !containsType(types, a.Type) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit), nil
}

func (m *memLedger) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txns {
		if t.Reference == reference {
			return &t, nil
		}
	}
	return nil, models.ErrTransactionNotFound
}

func (m *memLedger) FindDueScheduledTransactions(ctx context.Context, now time.Time, afterID int64, limit int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageLoads++
	var out []models.Transaction
	for _, t := range m.txns {
		if t.ID > afterID && t.IsDue(now) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit), nil
}

// page keeps the first limit rows, like the store's LIMIT.
func page[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func containsType(types []models.AccountType, t models.AccountType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func completedFor(txns map[int64]models.Transaction, accountID int64) []models.Transaction {
	var out []models.Transaction
	for _, t := range txns {
		if t.Status == models.TransactionStatusCompleted && t.Touches(accountID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memTx struct {
	parent   *memLedger
	accounts map[int64]models.Account
	txns     map[int64]models.Transaction
	nextID   int64
}

var errInjected = errors.New("injected failure")

func (t *memTx) fail(method string) error {
	p := t.parent
	if p.failMethod != method {
		return nil
	}
	p.calls[method]++
	if p.calls[method] == p.failCall {
		if p.failErr != nil {
			return p.failErr
		}
		return errInjected
	}
	return nil
}

func (t *memTx) LockAccount(ctx context.Context, id int64) (*models.Account, error) {
	if err := t.fail("LockAccount"); err != nil {
		return nil, err
	}
	a, ok := t.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	return &a, nil
}

func (t *memTx) LockTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	txn, ok := t.txns[id]
	if !ok {
		return nil, models.ErrTransactionNotFound
	}
	return &txn, nil
}

func (t *memTx) ListCompletedTransactions(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	return completedFor(t.txns, accountID), nil
}

func (t *memTx) UpdateAccountBalances(ctx context.Context, account *models.Account) error {
	if err := t.fail("UpdateAccountBalances"); err != nil {
		return err
	}
	if _, ok := t.accounts[account.ID]; !ok {
		return models.ErrAccountNotFound
	}
	t.accounts[account.ID] = *account
	return nil
}

func (t *memTx) UpdateTransactionStatus(ctx context.Context, txn *models.Transaction) error {
	if err := t.fail("UpdateTransactionStatus"); err != nil {
		return err
	}
	stored, ok := t.txns[txn.ID]
	if !ok || stored.Status.IsTerminal() {
		return models.ErrConflict
	}
	stored.Status = txn.Status
	stored.Description = txn.Description
	t.txns[txn.ID] = stored
	return nil
}

func (t *memTx) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if err := t.fail("CreateTransaction"); err != nil {
		return err
	}
	t.nextID++
	txn.ID = t.nextID
	t.txns[txn.ID] = *txn
	return nil
}
