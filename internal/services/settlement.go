package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/sbilibin2017/gw-ledger/internal/repositories"
)

const opSettle = "settle"

// SettlementService moves money for one transaction at a time.
type SettlementService struct {
	uow       UnitOfWork
	txns      TransactionReader
	publisher EventPublisher
	metrics   Metrics
	retry     RetryPolicy
	now       Clock
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	uow UnitOfWork,
	txns TransactionReader,
	publisher EventPublisher,
	metrics Metrics,
	retry RetryPolicy,
) *SettlementService {
	return &SettlementService{
		uow:       uow,
		txns:      txns,
		publisher: publisher,
		metrics:   metrics,
		retry:     retry,
		now:       time.Now,
	}
}

// SettleByReference resolves the transaction reference and settles it.
func (s *SettlementService) SettleByReference(ctx context.Context, reference string) (models.SettlementResult, error) {
	txn, err := s.txns.GetTransactionByReference(ctx, reference)
	if err != nil {
		logger.Log.Errorw("failed to resolve transaction", "reference", reference, "error", err)
		return models.SettlementResult{}, err
	}
	return s.settle(ctx, txn.ID, false)
}

// SettleScheduledByReference settles the transaction only while it is still SCHEDULED.
// A PENDING transaction is left alone with models.ErrNotScheduled.
func (s *SettlementService) SettleScheduledByReference(ctx context.Context, reference string) (models.SettlementResult, error) {
	txn, err := s.txns.GetTransactionByReference(ctx, reference)
	if err != nil {
		logger.Log.Errorw("failed to resolve transaction", "reference", reference, "error", err)
		return models.SettlementResult{}, err
	}
	return s.settle(ctx, txn.ID, true)
}

// Settle validates and applies the transaction in a single unit of work and returns its terminal outcome.
//
// Validation failures end the transaction FAILED with the reason appended to its description.
// A terminal transaction is returned as is with AlreadyTerminal set. Conflicts are retried; once
// the attempts run out the transaction is left untouched for the next run. Any other error,
// a missing account included, rolls the unit back and the transaction is then marked FAILED
// in a fresh unit.
func (s *SettlementService) Settle(ctx context.Context, transactionID int64) (models.SettlementResult, error) {
	return s.settle(ctx, transactionID, false)
}

func (s *SettlementService) settle(ctx context.Context, transactionID int64, scheduledOnly bool) (models.SettlementResult, error) {
	var (
		result  models.SettlementResult
		account string
	)

	err := s.retry.Do(ctx, opSettle, s.metrics, func(ctx context.Context) error {
		var err error
		result, account, err = s.apply(ctx, transactionID, scheduledOnly)
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, models.ErrTransactionNotFound),
		errors.Is(err, models.ErrNotScheduled),
		errors.Is(err, models.ErrRetriesExhausted),
		ctx.Err() != nil:
		logger.Log.Errorw("settlement not applied", "transaction_id", transactionID, "error", err)
		return models.SettlementResult{}, err
	default:
		logger.Log.Errorw("settlement failed, recording failure", "transaction_id", transactionID, "error", err)
		result, account, err = s.recordFailure(ctx, transactionID, err)
		if err != nil {
			logger.Log.Errorw("failed to record settlement failure", "transaction_id", transactionID, "error", err)
			return models.SettlementResult{}, err
		}
	}

	if result.AlreadyTerminal {
		logger.Log.Infow("transaction already terminal, skipping", "reference", result.Reference, "status", result.Status)
		return result, nil
	}

	s.metrics.RecordSettlement(result.Status)
	s.publish(ctx, result, account)

	logger.Log.Infow("transaction settled",
		"reference", result.Reference,
		"status", result.Status,
		"amount", result.Amount,
		"reason", result.FailureReason,
	)
	return result, nil
}

// apply runs one settlement attempt. account is the source account number, for events.
func (s *SettlementService) apply(ctx context.Context, transactionID int64, scheduledOnly bool) (models.SettlementResult, string, error) {
	var (
		result  models.SettlementResult
		account string
	)

	err := s.uow.AtomicUpdate(ctx, func(ctx context.Context, tx repositories.LedgerTx) error {
		txn, err := tx.LockTransaction(ctx, transactionID)
		if err != nil {
			return err
		}

		result = models.SettlementResult{Reference: txn.Reference, Status: txn.Status, Amount: txn.Amount}
		if txn.Status.IsTerminal() {
			result.AlreadyTerminal = true
			return nil
		}
		if scheduledOnly && txn.Status != models.TransactionStatusScheduled {
			return fmt.Errorf("%w: %s is %s", models.ErrNotScheduled, txn.Reference, txn.Status)
		}

		source, target, err := lockParties(ctx, tx, txn)
		if err != nil {
			return err
		}
		account = source.AccountNumber

		switch {
		case !source.IsActive() || (txn.HasTarget() && !target.IsActive()):
			txn.Fail(models.FailureAccountInactive)
			result.FailureReason = models.FailureAccountInactive
		case !source.CanCover(txn.Amount):
			txn.Fail(models.FailureInsufficientFunds)
			result.FailureReason = models.FailureInsufficientFunds
		default:
			source.Debit(txn.Amount)
			if err := tx.UpdateAccountBalances(ctx, source); err != nil {
				return err
			}
			if target != nil {
				target.Credit(txn.Amount)
				if err := tx.UpdateAccountBalances(ctx, target); err != nil {
					return err
				}
			}
			txn.Status = models.TransactionStatusCompleted
		}

		result.Status = txn.Status
		return tx.UpdateTransactionStatus(ctx, txn)
	})

	return result, account, err
}

// recordFailure marks the transaction FAILED after the settlement unit rolled back. The reason is
// the error text, or FailureAccountNotFound when a party is missing.
func (s *SettlementService) recordFailure(ctx context.Context, transactionID int64, cause error) (models.SettlementResult, string, error) {
	var result models.SettlementResult

	err := s.uow.AtomicUpdate(ctx, func(ctx context.Context, tx repositories.LedgerTx) error {
		txn, err := tx.LockTransaction(ctx, transactionID)
		if err != nil {
			return err
		}

		result = models.SettlementResult{Reference: txn.Reference, Status: txn.Status, Amount: txn.Amount}
		if txn.Status.IsTerminal() {
			result.AlreadyTerminal = true
			return nil
		}

		reason := cause.Error()
		if errors.Is(cause, models.ErrAccountNotFound) {
			reason = models.FailureAccountNotFound
		}

		txn.Fail(reason)
		result.Status = txn.Status
		result.FailureReason = reason
		return tx.UpdateTransactionStatus(ctx, txn)
	})

	return result, "", err
}

// lockParties locks the source and optional target account in ascending id order.
func lockParties(ctx context.Context, tx repositories.LedgerTx, txn *models.Transaction) (source, target *models.Account, err error) {
	if !txn.HasTarget() || txn.TargetAccountID.Int64 == txn.AccountID {
		source, err = tx.LockAccount(ctx, txn.AccountID)
		if err != nil {
			return nil, nil, err
		}
		if txn.HasTarget() {
			target = source
		}
		return source, target, nil
	}

	first, second := txn.AccountID, txn.TargetAccountID.Int64
	if second < first {
		first, second = second, first
	}

	a, err := tx.LockAccount(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := tx.LockAccount(ctx, second)
	if err != nil {
		return nil, nil, err
	}

	if a.ID == txn.AccountID {
		return a, b, nil
	}
	return b, a, nil
}

func (s *SettlementService) publish(ctx context.Context, result models.SettlementResult, account string) {
	event := models.LedgerEvent{
		Type:          models.EventTransactionSettled,
		Reference:     result.Reference,
		AccountNumber: account,
		Amount:        result.Amount,
		Status:        string(result.Status),
		Timestamp:     s.now().Unix(),
	}
	if result.Status == models.TransactionStatusFailed {
		event.Type = models.EventTransactionFailed
		event.Detail = result.FailureReason
	}
	s.publisher.Publish(ctx, event)
}
