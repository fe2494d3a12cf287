package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vitalmed/loan-ledger/internal/domain"
)

// LoanWithTotal is a loan row joined with the sum of its returns.
type LoanWithTotal struct {
	domain.Loan
	TotalReturned decimal.Decimal `db:"total_returned"`
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create appends a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// List retrieves all loans joined with their return totals,
	// ordered by loan date then id
	List(ctx context.Context) ([]*LoanWithTotal, error)
}

// ReturnRepository defines the interface for return data operations
type ReturnRepository interface {
	// Create appends a new return record
	Create(ctx context.Context, ret *domain.Return) error

	// GetByLoanID retrieves all returns for a loan
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Return, error)
}
