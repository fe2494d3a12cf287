package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan represents an equipment loan to a client. The loaned value is
// denominated in USD; settlement is tracked through Return records,
// never by mutating the loan itself.
type Loan struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ProcessNumber   string          `json:"process_number" db:"process_number"`
	BorrowerTaxID   string          `json:"borrower_tax_id" db:"borrower_tax_id"`
	BorrowerName    string          `json:"borrower_name" db:"borrower_name"`
	ItemReference   string          `json:"item_reference" db:"item_reference"`
	ItemDescription string          `json:"item_description,omitempty" db:"item_description"`
	LoanValue       decimal.Decimal `json:"loan_value" db:"loan_value"`
	LoanDate        time.Time       `json:"loan_date" db:"loan_date"`
	ExitDate        *time.Time      `json:"exit_date,omitempty" db:"exit_date"`
	ImportProcess   string          `json:"import_process,omitempty" db:"import_process"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty" db:"updated_at"`
}

// DTOs for requests and responses

type RecordLoanRequest struct {
	ProcessNumber   string          `json:"process_number" validate:"required"`
	BorrowerTaxID   string          `json:"borrower_tax_id" validate:"required,cnpj"`
	BorrowerName    string          `json:"borrower_name" validate:"required"`
	ItemReference   string          `json:"item_reference" validate:"required"`
	ItemDescription string          `json:"item_description"`
	LoanValue       decimal.Decimal `json:"loan_value" validate:"required,decimal_gt=0"`
	LoanDate        string          `json:"loan_date" validate:"required"`
	ExitDate        string          `json:"exit_date"`
	ImportProcess   string          `json:"import_process"`
	Notes           string          `json:"notes"`
}

type RecordLoanResponse struct {
	Loan *Loan `json:"loan"`
}

type ListLoansResponse struct {
	Loans []*LoanSummary `json:"loans"`
	Total int            `json:"total"`
}
