package models

import "github.com/shopspring/decimal"

const (
	// MoneyScale is the number of fractional digits of posted amounts and balances.
	MoneyScale int32 = 2
	// RateScale is the number of fractional digits of a period rate.
	RateScale int32 = 6

	daysInYear   = 365
	monthsInYear = 12
)

// InterestPeriod is the accrual period of an interest posting.
type InterestPeriod string

// Supported interest periods
const (
	InterestPeriodDaily   InterestPeriod = "daily"
	InterestPeriodMonthly InterestPeriod = "monthly"
)

// Valid reports whether p is a known period.
func (p InterestPeriod) Valid() bool {
	return p == InterestPeriodDaily || p == InterestPeriodMonthly
}

// Description is the transaction description used for postings of this period.
func (p InterestPeriod) Description() string {
	if p == InterestPeriodMonthly {
		return "Monthly compound interest"
	}
	return "Daily interest accrual"
}

// divisor is the number of periods per year.
func (p InterestPeriod) divisor() int64 {
	if p == InterestPeriodMonthly {
		return monthsInYear
	}
	return daysInYear
}

// RoundMoney rounds half-up to MoneyScale digits.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// PeriodRate converts an annual rate to the rate of one period, rounded half-up to RateScale digits.
func PeriodRate(annual decimal.Decimal, period InterestPeriod) decimal.Decimal {
	return annual.DivRound(decimal.NewFromInt(period.divisor()), RateScale)
}

// CalculateInterest returns the interest earned on balance for one period at the annual rate.
func CalculateInterest(balance, annual decimal.Decimal, period InterestPeriod) decimal.Decimal {
	return RoundMoney(balance.Mul(PeriodRate(annual, period)))
}
