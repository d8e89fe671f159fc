package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a money movement.
type TransactionType string

// Supported transaction types
const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypePayment    TransactionType = "PAYMENT"
	TransactionTypeFee        TransactionType = "FEE"
	TransactionTypeInterest   TransactionType = "INTEREST"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// TransactionStatus is the state of a transaction. COMPLETED, FAILED and CANCELLED are terminal.
type TransactionStatus string

// Supported transaction statuses
const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusScheduled TransactionStatus = "SCHEDULED"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next respects status monotonicity.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return s == TransactionStatusPending || s == TransactionStatusScheduled
	case TransactionStatusScheduled:
		return s == TransactionStatusPending
	}
	return false
}

// Transaction represents a transaction row in the database
type Transaction struct {
	ID              int64             `json:"id" db:"id"`                               // Surrogate key
	Reference       string            `json:"reference" db:"reference"`                 // Unique generated reference, e.g. TRX1a2b3c4d5
	Type            TransactionType   `json:"type" db:"type"`                           // Movement type
	Amount          decimal.Decimal   `json:"amount" db:"amount"`                       // Positive amount; ADJUSTMENT may be negative
	Description     string            `json:"description" db:"description"`             // Free text, failure reasons are appended
	Status          TransactionStatus `json:"status" db:"status"`                       // Current status
	TransactionDate time.Time         `json:"transaction_date" db:"transaction_date"`   // When the transaction was recorded
	ScheduledDate   sql.NullTime      `json:"scheduled_date" db:"scheduled_date"`       // Due time of a scheduled transaction
	AccountID       int64             `json:"account_id" db:"account_id"`               // Source account
	TargetAccountID sql.NullInt64     `json:"target_account_id" db:"target_account_id"` // Target account of a transfer
}

// HasTarget reports whether the transaction moves money into a second account.
func (t *Transaction) HasTarget() bool {
	return t.TargetAccountID.Valid
}

// Touches reports whether the transaction references accountID on either side.
func (t *Transaction) Touches(accountID int64) bool {
	return t.AccountID == accountID || (t.TargetAccountID.Valid && t.TargetAccountID.Int64 == accountID)
}

// IsDue reports whether a scheduled transaction should be settled at now.
func (t *Transaction) IsDue(now time.Time) bool {
	return t.Status == TransactionStatusScheduled && t.ScheduledDate.Valid && !t.ScheduledDate.Time.After(now)
}

// Fail marks the transaction FAILED and appends the failure reason to its description.
func (t *Transaction) Fail(reason string) {
	t.Status = TransactionStatusFailed
	t.Description = t.Description + " - Failed: " + reason
}

// NewInterestTransaction builds a COMPLETED interest posting for accountID.
func NewInterestTransaction(accountID int64, amount decimal.Decimal, period InterestPeriod, now time.Time) Transaction {
	return Transaction{
		Reference:       NewTransactionReference(),
		Type:            TransactionTypeInterest,
		Amount:          amount,
		Description:     period.Description(),
		Status:          TransactionStatusCompleted,
		TransactionDate: now,
		AccountID:       accountID,
	}
}

// NewAdjustmentTransaction builds a COMPLETED signed adjustment for accountID.
func NewAdjustmentTransaction(accountID int64, amount decimal.Decimal, now time.Time) Transaction {
	return Transaction{
		Reference:       NewTransactionReference(),
		Type:            TransactionTypeAdjustment,
		Amount:          RoundMoney(amount),
		Description:     "Reconciliation adjustment",
		Status:          TransactionStatusCompleted,
		TransactionDate: now,
		AccountID:       accountID,
	}
}
