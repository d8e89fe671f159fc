package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementResult is the definite outcome of a settlement request.
type SettlementResult struct {
	Reference       string            `json:"reference"`
	Status          TransactionStatus `json:"status"`
	Amount          decimal.Decimal   `json:"amount"`
	FailureReason   string            `json:"failure_reason,omitempty"`
	AlreadyTerminal bool              `json:"already_terminal"`
}

// Discrepancy is a mismatch between the stored balance and the balance implied by completed history.
type Discrepancy struct {
	AccountID     int64           `json:"account_id"`
	AccountNumber string          `json:"account_number"`
	Stored        decimal.Decimal `json:"stored"`
	Computed      decimal.Decimal `json:"computed"`
	Difference    decimal.Decimal `json:"difference"` // Stored minus computed
	DetectedAt    time.Time       `json:"detected_at"`
}

// NewDiscrepancy returns a discrepancy when stored and computed differ, nil otherwise.
func NewDiscrepancy(account Account, computed decimal.Decimal, now time.Time) *Discrepancy {
	if account.Balance.Equal(computed) {
		return nil
	}
	return &Discrepancy{
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
		Stored:        account.Balance,
		Computed:      computed,
		Difference:    account.Balance.Sub(computed),
		DetectedAt:    now,
	}
}

// Job names of the periodic ledger runs.
const (
	JobScheduledTransfers = "scheduled_transfers"
	JobDailyInterest      = "daily_interest"
	JobMonthlyInterest    = "monthly_interest"
	JobReconciliation     = "reconciliation"
)

// BatchReport summarizes one bulk run over a candidate set.
type BatchReport struct {
	Job        string        `json:"job"`
	Candidates int           `json:"candidates"`
	Succeeded  int           `json:"succeeded"` // Completed, posted or balanced
	Failed     int           `json:"failed"`    // Terminal failures and discrepancies
	Skipped    int           `json:"skipped"`   // No-ops, ineligible or already claimed
	Errors     int           `json:"errors"`    // System failures
	Duration   time.Duration `json:"duration"`
}

// Outcome is the classification of one candidate in a batch.
type Outcome int

// Candidate outcomes
const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	OutcomeSkipped
	OutcomeError
)

// String returns the metric label of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "error"
	}
}

// Add counts one candidate outcome.
func (r *BatchReport) Add(o Outcome) {
	switch o {
	case OutcomeSucceeded:
		r.Succeeded++
	case OutcomeFailed:
		r.Failed++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Errors++
	}
}
