package models

import "errors"

// Ledger error taxonomy
var (
	// ErrAccountNotFound is returned when a referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransactionNotFound is returned when a referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrConflict is returned by the store when a concurrent mutation won the race; the unit may be retried.
	ErrConflict = errors.New("concurrent ledger update conflict")
	// ErrRetriesExhausted wraps ErrConflict once the bounded retry budget is spent.
	ErrRetriesExhausted = errors.New("ledger update retries exhausted")
	// ErrInvalidPeriod is returned for an unknown interest period.
	ErrInvalidPeriod = errors.New("invalid interest period")
	// ErrAlreadyClaimed is returned when a job or accrual period is already claimed by another run.
	ErrAlreadyClaimed = errors.New("already claimed")
	// ErrNotScheduled is returned when a scheduled-only settlement finds the transaction in another status.
	ErrNotScheduled = errors.New("transaction is not scheduled")
)

// Validation failure reasons recorded on failed transactions.
const (
	FailureAccountInactive   = "Account inactive"
	FailureInsufficientFunds = "Insufficient funds"
	FailureAccountNotFound   = "Account not found"
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrTransactionNotFound)
}
