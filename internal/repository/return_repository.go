package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitalmed/loan-ledger/internal/domain"
)

type returnRepository struct {
	db *sqlx.DB
}

func NewReturnRepository(db *sqlx.DB) ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, ret *domain.Return) error {
	query := `
		INSERT INTO returns (id, loan_id, item_reference, item_description, returned_value,
			return_date, writeoff_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		ret.ID,
		ret.LoanID,
		ret.ItemReference,
		ret.ItemDescription,
		ret.ReturnedValue,
		ret.ReturnDate,
		ret.WriteoffDate,
		ret.Notes,
		ret.CreatedAt,
	)

	return err
}

func (r *returnRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Return, error) {
	query := `
		SELECT id, loan_id, item_reference, item_description, returned_value,
			return_date, writeoff_date, notes, created_at
		FROM returns
		WHERE loan_id = $1
		ORDER BY return_date, id
	`

	var returns []*domain.Return
	err := r.db.SelectContext(ctx, &returns, query, loanID)
	if err != nil {
		return nil, err
	}

	return returns, nil
}
