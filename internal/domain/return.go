package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Return represents a partial or complete return against a loan. The
// returned item may differ from the loaned one (substitution is allowed).
// WriteoffDate ("baixa") marks administrative closure and is distinct
// from the physical return date.
type Return struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	LoanID          uuid.UUID       `json:"loan_id" db:"loan_id"`
	ItemReference   string          `json:"item_reference" db:"item_reference"`
	ItemDescription string          `json:"item_description,omitempty" db:"item_description"`
	ReturnedValue   decimal.Decimal `json:"returned_value" db:"returned_value"`
	ReturnDate      time.Time       `json:"return_date" db:"return_date"`
	WriteoffDate    *time.Time      `json:"writeoff_date,omitempty" db:"writeoff_date"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

type RecordReturnRequest struct {
	ItemReference   string          `json:"item_reference" validate:"required"`
	ItemDescription string          `json:"item_description"`
	ReturnedValue   decimal.Decimal `json:"returned_value" validate:"decimal_gte=0"`
	ReturnDate      string          `json:"return_date" validate:"required"`
	WriteoffDate    string          `json:"writeoff_date"`
	Notes           string          `json:"notes"`
}

type RecordReturnResponse struct {
	Return *Return `json:"return"`
}
