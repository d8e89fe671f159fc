package services

import (
	"context"
	"time"

	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/sbilibin2017/gw-ledger/internal/repositories"
	"github.com/shopspring/decimal"
)

//go:generate mockgen --destination=ledger_mock.go --package=services . UnitOfWork,AccountReader,TransactionReader,AccrualMarker,JobLocker,EventPublisher,Settler,Accruer,Reconciler
//go:generate mockgen --destination=ledger_tx_mock.go --package=services github.com/sbilibin2017/gw-ledger/internal/repositories LedgerTx

// UnitOfWork opens atomic units over the ledger store.
type UnitOfWork interface {
	AtomicUpdate(ctx context.Context, fn func(ctx context.Context, tx repositories.LedgerTx) error) error
}

// AccountReader reads accounts outside of a unit of work. Finders page by id: they return at most
// limit rows with an id greater than afterID.
type AccountReader interface {
	GetAccountByNumber(ctx context.Context, number string) (*models.Account, error)
	FindAccountsByStatusAndType(ctx context.Context, status models.AccountStatus, types []models.AccountType, afterID int64, limit int) ([]models.Account, error)
}

// TransactionReader reads transactions outside of a unit of work.
type TransactionReader interface {
	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	FindDueScheduledTransactions(ctx context.Context, now time.Time, afterID int64, limit int) ([]models.Transaction, error)
}

// AccrualMarker remembers which accounts already accrued interest for a period.
type AccrualMarker interface {
	Claim(ctx context.Context, period models.InterestPeriod, accountID int64, periodKey string) error
	Release(ctx context.Context, period models.InterestPeriod, accountID int64, periodKey string) error
}

// JobLocker serializes bulk runs across replicas.
type JobLocker interface {
	WithLock(ctx context.Context, job string, fn func(ctx context.Context) error) error
}

// EventPublisher delivers ledger events after commit. Delivery failures never fail the ledger operation.
type EventPublisher interface {
	Publish(ctx context.Context, event models.LedgerEvent)
}

// Metrics records ledger measurements.
type Metrics interface {
	RecordSettlement(status models.TransactionStatus)
	RecordInterest(period models.InterestPeriod, amount decimal.Decimal)
	RecordDiscrepancy()
	RecordAdjustment()
	RecordConflict(operation string)
	RecordBatch(report models.BatchReport)
}

// Settler settles a single transaction.
type Settler interface {
	Settle(ctx context.Context, transactionID int64) (models.SettlementResult, error)
}

// Accruer accrues interest on a single account.
type Accruer interface {
	Accrue(ctx context.Context, accountID int64, period models.InterestPeriod) (decimal.Decimal, error)
}

// Reconciler reconciles a single account.
type Reconciler interface {
	Reconcile(ctx context.Context, accountID int64) (*models.Discrepancy, error)
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time
