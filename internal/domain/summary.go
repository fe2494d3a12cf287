package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement statuses. Status is always derived from the loan value and
// the sum of returns; it is never stored, so it cannot drift.
const (
	StatusActive  = "ACTIVE"  // nothing returned yet
	StatusPartial = "PARTIAL" // some value returned, balance open
	StatusSettled = "SETTLED" // returned exactly the loaned value
	StatusSurplus = "SURPLUS" // returned more than the loaned value
)

// AllStatuses lists every settlement status, in lifecycle order.
var AllStatuses = []string{StatusActive, StatusPartial, StatusSettled, StatusSurplus}

// ValidStatus reports whether s is one of the settlement statuses.
func ValidStatus(s string) bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DeriveStatus classifies a loan from its value and the total returned
// against it. Total over the four statuses: every (loanValue, totalReturned)
// pair maps to exactly one.
func DeriveStatus(loanValue, totalReturned decimal.Decimal) string {
	switch {
	case totalReturned.IsZero():
		return StatusActive
	case totalReturned.LessThan(loanValue):
		return StatusPartial
	case totalReturned.Equal(loanValue):
		return StatusSettled
	default:
		return StatusSurplus
	}
}

// LoanSummary is a loan together with its derived settlement figures.
// Overdue is orthogonal to Status: a PARTIAL loan can be overdue, a
// SETTLED one never is.
type LoanSummary struct {
	Loan          *Loan           `json:"loan"`
	TotalReturned decimal.Decimal `json:"total_returned"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
	Overdue       bool            `json:"overdue"`
}

// Summarize builds the derived view for a loan given the exact sum of its
// returns. Loans are considered overdue when they are older than the given
// threshold and still carry an open balance.
func Summarize(loan *Loan, totalReturned decimal.Decimal, now time.Time, overdueAfter time.Duration) *LoanSummary {
	status := DeriveStatus(loan.LoanValue, totalReturned)
	overdue := false
	if status == StatusActive || status == StatusPartial {
		overdue = now.Sub(loan.LoanDate) > overdueAfter
	}
	return &LoanSummary{
		Loan:          loan,
		TotalReturned: totalReturned,
		Balance:       loan.LoanValue.Sub(totalReturned),
		Status:        status,
		Overdue:       overdue,
	}
}

// SumReturns adds up return values with exact decimal arithmetic. The
// result does not depend on slice order.
func SumReturns(returns []*Return) decimal.Decimal {
	total := decimal.Zero
	for _, ret := range returns {
		total = total.Add(ret.ReturnedValue)
	}
	return total
}
