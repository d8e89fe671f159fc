package models

import (
	"github.com/shopspring/decimal"
)

// LedgerEventType is the kind of event published after a ledger mutation or finding.
type LedgerEventType string

// Supported ledger events
const (
	EventTransactionSettled LedgerEventType = "transaction_settled"
	EventTransactionFailed  LedgerEventType = "transaction_failed"
	EventInterestPosted     LedgerEventType = "interest_posted"
	EventDiscrepancyFound   LedgerEventType = "discrepancy_found"
	EventAdjustmentPosted   LedgerEventType = "adjustment_posted"
)

// LedgerEvent represents a ledger event, including amount, account, timestamp, and event type.
type LedgerEvent struct {
	Type          LedgerEventType `json:"type" bson:"type"`                                         // Type is the kind of event.
	Reference     string          `json:"reference,omitempty" bson:"reference,omitempty"`           // Reference is the transaction reference, if any.
	AccountNumber string          `json:"account_number,omitempty" bson:"account_number,omitempty"` // AccountNumber is the affected account, if known.
	Amount        decimal.Decimal `json:"amount" bson:"amount"`                                     // Amount is the moved, posted or mismatched amount.
	Status        string          `json:"status,omitempty" bson:"status,omitempty"`                 // Status is the resulting transaction status.
	Detail        string          `json:"detail,omitempty" bson:"detail,omitempty"`                 // Detail carries failure reasons.
	Timestamp     int64           `json:"timestamp" bson:"timestamp"`                               // Timestamp is the Unix timestamp (in seconds) of the event.
}

// Key returns the partitioning key of the event.
func (e LedgerEvent) Key() string {
	if e.Reference != "" {
		return e.Reference
	}
	return e.AccountNumber
}
