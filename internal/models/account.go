package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account product.
type AccountType string

// Supported account types
const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeLoan       AccountType = "LOAN"
)

// AccountStatus is the lifecycle state of an account. Closure is a status, accounts are never deleted.
type AccountStatus string

// Supported account statuses
const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
	AccountStatusFrozen   AccountStatus = "FROZEN"
	AccountStatusClosed   AccountStatus = "CLOSED"
)

// InterestBearingTypes are the account types eligible for interest accrual.
var InterestBearingTypes = []AccountType{AccountTypeSavings, AccountTypeInvestment}

// Account represents an account row in the database
type Account struct {
	ID               int64               `json:"id" db:"id"`                               // Surrogate key
	AccountNumber    string              `json:"account_number" db:"account_number"`       // Unique, immutable account number
	Type             AccountType         `json:"type" db:"type"`                           // Product type
	Balance          decimal.Decimal     `json:"balance" db:"balance"`                     // Ledger balance
	AvailableBalance decimal.Decimal     `json:"available_balance" db:"available_balance"` // Balance available for debits
	InterestRate     decimal.NullDecimal `json:"interest_rate" db:"interest_rate"`         // Annualized rate, null when not interest-bearing
	Status           AccountStatus       `json:"status" db:"status"`                       // Lifecycle status
	UserID           int64               `json:"user_id" db:"user_id"`                     // Owning user
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`               // Creation timestamp
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`               // Last update timestamp
}

// IsActive reports whether the account accepts balance movements.
func (a *Account) IsActive() bool {
	return a != nil && a.Status == AccountStatusActive
}

// EarnsInterest reports whether the account qualifies for interest accrual.
func (a *Account) EarnsInterest() bool {
	if !a.IsActive() || !a.InterestRate.Valid {
		return false
	}
	for _, t := range InterestBearingTypes {
		if a.Type == t {
			return true
		}
	}
	return false
}

// Credit adds amount to both balances, keeping the money scale.
func (a *Account) Credit(amount decimal.Decimal) {
	a.Balance = RoundMoney(a.Balance.Add(amount))
	a.AvailableBalance = RoundMoney(a.AvailableBalance.Add(amount))
}

// Debit subtracts amount from both balances, keeping the money scale.
func (a *Account) Debit(amount decimal.Decimal) {
	a.Balance = RoundMoney(a.Balance.Sub(amount))
	a.AvailableBalance = RoundMoney(a.AvailableBalance.Sub(amount))
}

// CanCover reports whether the available balance covers amount.
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.AvailableBalance.GreaterThanOrEqual(amount)
}
