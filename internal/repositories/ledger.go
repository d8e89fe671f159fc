package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

// PostgreSQL error codes treated as retryable conflicts.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

const accountColumns = `id, account_number, type, balance, available_balance, interest_rate, status, user_id, created_at, updated_at`

const transactionColumns = `id, reference, type, amount, description, status, transaction_date, scheduled_date, account_id, target_account_id`

// LedgerTx is one open unit of work. Rows read through Lock* stay locked until the unit ends.
type LedgerTx interface {
	LockAccount(ctx context.Context, id int64) (*models.Account, error)
	LockTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	ListCompletedTransactions(ctx context.Context, accountID int64) ([]models.Transaction, error)
	UpdateAccountBalances(ctx context.Context, account *models.Account) error
	UpdateTransactionStatus(ctx context.Context, txn *models.Transaction) error
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
}

// LedgerRepository is the PostgreSQL ledger store.
type LedgerRepository struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

// LedgerOption configures a LedgerRepository.
type LedgerOption func(*LedgerRepository)

// WithLockTimeout bounds how long a unit waits for a row lock before reporting a conflict.
func WithLockTimeout(d time.Duration) LedgerOption {
	return func(r *LedgerRepository) { r.lockTimeout = d }
}

// NewLedgerRepository creates a new ledger store over db.
func NewLedgerRepository(db *sqlx.DB, opts ...LedgerOption) *LedgerRepository {
	r := &LedgerRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindAccountsByStatusAndType returns up to limit accounts in status whose type is one of types,
// ordered by id and starting after afterID. Empty types matches every type.
func (r *LedgerRepository) FindAccountsByStatusAndType(ctx context.Context, status models.AccountStatus, types []models.AccountType, afterID int64, limit int) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status = ? AND id > ?`
	args := []any{string(status), afterID}
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		query += ` AND type IN (?)`
		args = append(args, names)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, limit)

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var accounts []models.Account
	err = r.db.SelectContext(ctx, &accounts, query, args...)
	logQuery(query, args, len(accounts), err)
	return accounts, err
}

// FindDueScheduledTransactions returns up to limit SCHEDULED transactions whose scheduled date
// is not after now, ordered by id and starting after afterID.
func (r *LedgerRepository) FindDueScheduledTransactions(ctx context.Context, now time.Time, afterID int64, limit int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1 AND scheduled_date <= $2 AND id > $3
		ORDER BY id
		LIMIT $4
	`
	args := []any{string(models.TransactionStatusScheduled), now, afterID, limit}

	var txns []models.Transaction
	err := r.db.SelectContext(ctx, &txns, query, args...)
	logQuery(query, args, len(txns), err)
	return txns, err
}

// FindCompletedTransactionsForAccount returns every COMPLETED transaction on either side of accountID.
func (r *LedgerRepository) FindCompletedTransactionsForAccount(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	return selectCompleted(ctx, r.db, accountID)
}

// GetAccount returns the account by id.
func (r *LedgerRepository) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return getAccount(ctx, r.db, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// GetAccountByNumber returns the account by account number.
func (r *LedgerRepository) GetAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	return getAccount(ctx, r.db, `SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number)
}

// GetTransactionByReference returns the transaction by reference.
func (r *LedgerRepository) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	return getTransaction(ctx, r.db, `SELECT `+transactionColumns+` FROM transactions WHERE reference = $1`, reference)
}

// AtomicUpdate runs fn inside one database transaction. Either every write made through
// the LedgerTx persists or none does. Serialization failures, deadlocks and lock
// timeouts are reported as models.ErrConflict.
func (r *LedgerRepository) AtomicUpdate(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		logger.Log.Errorw("failed to begin ledger transaction", "error", err)
		return classify(err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			panic(rec)
		}
	}()

	if r.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return classify(err)
		}
	}

	if err := fn(ctx, &ledgerTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Log.Errorw("failed to roll back ledger transaction", "error", rbErr)
		}
		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		logger.Log.Errorw("failed to commit ledger transaction", "error", err)
		return classify(err)
	}
	return nil
}

type ledgerTx struct {
	tx *sqlx.Tx
}

func (l *ledgerTx) LockAccount(ctx context.Context, id int64) (*models.Account, error) {
	return getAccount(ctx, l.tx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
}

func (l *ledgerTx) LockTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return getTransaction(ctx, l.tx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (l *ledgerTx) ListCompletedTransactions(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	return selectCompleted(ctx, l.tx, accountID)
}

func (l *ledgerTx) UpdateAccountBalances(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET balance = $1, available_balance = $2, updated_at = NOW()
		WHERE id = $3
	`
	args := []any{account.Balance, account.AvailableBalance, account.ID}
	return execOne(ctx, l.tx, query, args, models.ErrAccountNotFound)
}

// UpdateTransactionStatus only touches rows that are still non-terminal; a terminal row
// means another unit finalized it first.
func (l *ledgerTx) UpdateTransactionStatus(ctx context.Context, txn *models.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, description = $2
		WHERE id = $3 AND status IN ('PENDING', 'SCHEDULED')
	`
	args := []any{string(txn.Status), txn.Description, txn.ID}
	return execOne(ctx, l.tx, query, args, models.ErrConflict)
}

func (l *ledgerTx) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (reference, type, amount, description, status, transaction_date, scheduled_date, account_id, target_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	args := []any{
		txn.Reference, string(txn.Type), txn.Amount, txn.Description, string(txn.Status),
		txn.TransactionDate, txn.ScheduledDate, txn.AccountID, txn.TargetAccountID,
	}

	var id int64
	err := sqlx.GetContext(ctx, l.tx, &id, query, args...)
	logQuery(query, args, id, err)
	if err != nil {
		return err
	}
	txn.ID = id
	return nil
}

func getAccount(ctx context.Context, q sqlx.QueryerContext, query string, arg any) (*models.Account, error) {
	var account models.Account
	err := sqlx.GetContext(ctx, q, &account, query, arg)
	logQuery(query, []any{arg}, account.AccountNumber, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func getTransaction(ctx context.Context, q sqlx.QueryerContext, query string, arg any) (*models.Transaction, error) {
	var txn models.Transaction
	err := sqlx.GetContext(ctx, q, &txn, query, arg)
	logQuery(query, []any{arg}, txn.Reference, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func selectCompleted(ctx context.Context, q sqlx.QueryerContext, accountID int64) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1 AND (account_id = $2 OR target_account_id = $2)
		ORDER BY id
	`
	args := []any{string(models.TransactionStatusCompleted), accountID}

	var txns []models.Transaction
	err := sqlx.SelectContext(ctx, q, &txns, query, args...)
	logQuery(query, args, len(txns), err)
	return txns, err
}

func execOne(ctx context.Context, e sqlx.ExecerContext, query string, args []any, noRows error) error {
	res, err := e.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, args, rowsAffected, err)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return noRows
	}
	return nil
}

// classify maps retryable PostgreSQL failures to models.ErrConflict.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %s", models.ErrConflict, pgErr.Message)
		}
	}
	return err
}

// logQuery logs the query on a single line with its args, result and error.
func logQuery(query string, args []any, result any, err error) {
	logger.Log.Debugw("query",
		"sql", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}
