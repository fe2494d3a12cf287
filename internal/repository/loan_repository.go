package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitalmed/loan-ledger/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, process_number, borrower_tax_id, borrower_name, item_reference,
			item_description, loan_value, loan_date, exit_date, import_process, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.ProcessNumber,
		loan.BorrowerTaxID,
		loan.BorrowerName,
		loan.ItemReference,
		loan.ItemDescription,
		loan.LoanValue,
		loan.LoanDate,
		loan.ExitDate,
		loan.ImportProcess,
		loan.Notes,
		loan.CreatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT id, process_number, borrower_tax_id, borrower_name, item_reference,
			item_description, loan_value, loan_date, exit_date, import_process, notes,
			created_at, updated_at
		FROM loans
		WHERE id = $1
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context) ([]*LoanWithTotal, error) {
	query := `
		SELECT l.id, l.process_number, l.borrower_tax_id, l.borrower_name, l.item_reference,
			l.item_description, l.loan_value, l.loan_date, l.exit_date, l.import_process,
			l.notes, l.created_at, l.updated_at,
			COALESCE(SUM(r.returned_value), 0) AS total_returned
		FROM loans l
		LEFT JOIN returns r ON r.loan_id = l.id
		GROUP BY l.id
		ORDER BY l.loan_date, l.id
	`

	var rows []*LoanWithTotal
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
