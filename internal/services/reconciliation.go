package services

import (
	"context"
	"time"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/sbilibin2017/gw-ledger/internal/repositories"
	"github.com/shopspring/decimal"
)

// ReconciliationService compares stored balances with completed history.
type ReconciliationService struct {
	uow       UnitOfWork
	accounts  AccountReader
	publisher EventPublisher
	metrics   Metrics
	retry     RetryPolicy
	now       Clock
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	uow UnitOfWork,
	accounts AccountReader,
	publisher EventPublisher,
	metrics Metrics,
	retry RetryPolicy,
) *ReconciliationService {
	return &ReconciliationService{
		uow:       uow,
		accounts:  accounts,
		publisher: publisher,
		metrics:   metrics,
		retry:     retry,
		now:       time.Now,
	}
}

// ComputeBalance returns the balance implied by the COMPLETED transactions touching accountID.
func ComputeBalance(accountID int64, txns []models.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txns {
		if t.Status != models.TransactionStatusCompleted || !t.Touches(accountID) {
			continue
		}
		switch t.Type {
		case models.TransactionTypeDeposit, models.TransactionTypeInterest, models.TransactionTypeAdjustment:
			if creditedAccount(t) == accountID {
				balance = balance.Add(t.Amount)
			}
		case models.TransactionTypeWithdrawal, models.TransactionTypePayment, models.TransactionTypeFee:
			if t.AccountID == accountID {
				balance = balance.Sub(t.Amount)
			}
		case models.TransactionTypeTransfer:
			if t.AccountID == accountID {
				balance = balance.Sub(t.Amount)
			}
			if t.TargetAccountID.Valid && t.TargetAccountID.Int64 == accountID {
				balance = balance.Add(t.Amount)
			}
		}
	}
	return models.RoundMoney(balance)
}

// creditedAccount is the account a one-sided credit lands on: the target when set, else the source.
func creditedAccount(t models.Transaction) int64 {
	if t.TargetAccountID.Valid {
		return t.TargetAccountID.Int64
	}
	return t.AccountID
}

// ReconcileByNumber resolves the account number and reconciles it.
func (s *ReconciliationService) ReconcileByNumber(ctx context.Context, number string) (*models.Discrepancy, error) {
	account, err := s.accounts.GetAccountByNumber(ctx, number)
	if err != nil {
		logger.Log.Errorw("failed to resolve account", "account", number, "error", err)
		return nil, err
	}
	return s.Reconcile(ctx, account.ID)
}

// Reconcile reports a discrepancy when the stored balance differs from the computed one. It never writes.
// The balance and the history are read in one unit under the account lock, so a settlement
// committing in between cannot tear the comparison.
func (s *ReconciliationService) Reconcile(ctx context.Context, accountID int64) (*models.Discrepancy, error) {
	var (
		d      *models.Discrepancy
		number string
	)

	err := s.retry.Do(ctx, "reconcile", s.metrics, func(ctx context.Context) error {
		d = nil
		return s.uow.AtomicUpdate(ctx, func(ctx context.Context, tx repositories.LedgerTx) error {
			account, err := tx.LockAccount(ctx, accountID)
			if err != nil {
				return err
			}
			number = account.AccountNumber

			history, err := tx.ListCompletedTransactions(ctx, accountID)
			if err != nil {
				return err
			}

			d = models.NewDiscrepancy(*account, ComputeBalance(accountID, history), s.now())
			return nil
		})
	})
	if err != nil {
		logger.Log.Errorw("reconciliation failed", "account_id", accountID, "error", err)
		return nil, err
	}

	if d == nil {
		logger.Log.Debugw("account balanced", "account", number)
		return nil, nil
	}

	logger.Log.Warnw("balance discrepancy",
		"account", d.AccountNumber,
		"stored", d.Stored,
		"computed", d.Computed,
		"difference", d.Difference,
	)
	s.metrics.RecordDiscrepancy()
	s.publisher.Publish(ctx, models.LedgerEvent{
		Type:          models.EventDiscrepancyFound,
		AccountNumber: d.AccountNumber,
		Amount:        d.Difference,
		Detail:        "stored " + d.Stored.StringFixed(2) + ", computed " + d.Computed.StringFixed(2),
		Timestamp:     d.DetectedAt.Unix(),
	})
	return d, nil
}

// AdjustByNumber resolves the account number and adjusts it.
func (s *ReconciliationService) AdjustByNumber(ctx context.Context, number string) (*models.Transaction, error) {
	account, err := s.accounts.GetAccountByNumber(ctx, number)
	if err != nil {
		logger.Log.Errorw("failed to resolve account", "account", number, "error", err)
		return nil, err
	}
	return s.Adjust(ctx, account.ID)
}

// Adjust recomputes the balance under the account lock and, if it still differs, records a
// COMPLETED ADJUSTMENT of stored minus computed so history matches the stored balance.
// The stored balance is never rewritten. It returns nil when the account is balanced.
func (s *ReconciliationService) Adjust(ctx context.Context, accountID int64) (*models.Transaction, error) {
	var (
		adjustment *models.Transaction
		number     string
	)

	err := s.retry.Do(ctx, "adjust", s.metrics, func(ctx context.Context) error {
		adjustment = nil
		return s.uow.AtomicUpdate(ctx, func(ctx context.Context, tx repositories.LedgerTx) error {
			account, err := tx.LockAccount(ctx, accountID)
			if err != nil {
				return err
			}
			number = account.AccountNumber

			history, err := tx.ListCompletedTransactions(ctx, accountID)
			if err != nil {
				return err
			}

			d := models.NewDiscrepancy(*account, ComputeBalance(accountID, history), s.now())
			if d == nil {
				return nil
			}

			txn := models.NewAdjustmentTransaction(accountID, d.Difference, s.now())
			if err := tx.CreateTransaction(ctx, &txn); err != nil {
				return err
			}
			adjustment = &txn
			return nil
		})
	})
	if err != nil {
		logger.Log.Errorw("reconciliation adjustment failed", "account_id", accountID, "error", err)
		return nil, err
	}

	if adjustment == nil {
		logger.Log.Infow("account balanced, no adjustment", "account", number)
		return nil, nil
	}

	s.metrics.RecordAdjustment()
	s.publisher.Publish(ctx, models.LedgerEvent{
		Type:          models.EventAdjustmentPosted,
		Reference:     adjustment.Reference,
		AccountNumber: number,
		Amount:        adjustment.Amount,
		Status:        string(adjustment.Status),
		Timestamp:     s.now().Unix(),
	})

	logger.Log.Infow("reconciliation adjustment posted", "account", number, "reference", adjustment.Reference, "amount", adjustment.Amount)
	return adjustment, nil
}
