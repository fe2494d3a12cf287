package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vitalmed/loan-ledger/internal/config"
	"github.com/vitalmed/loan-ledger/internal/domain"
	"github.com/vitalmed/loan-ledger/internal/mocks"
	"github.com/vitalmed/loan-ledger/internal/repository"
	"github.com/vitalmed/loan-ledger/internal/service"
	customError "github.com/vitalmed/loan-ledger/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Ledger: config.LedgerConfig{
			OverdueThresholdDays: 90,
			SummaryCacheTTL:      "10m",
			ExportMaxRows:        1000,
		},
	}
}

func newService(loanRepo *mocks.MockLoanRepository, returnRepo *mocks.MockReturnRepository) *service.LedgerService {
	return service.NewLedgerService(loanRepo, returnRepo, nil, testConfig())
}

func validLoanRequest() *domain.RecordLoanRequest {
	return &domain.RecordLoanRequest{
		ProcessNumber: "IMP-2024-0042",
		BorrowerTaxID: "11.222.333/0001-81",
		BorrowerName:  "Hospital São Lucas",
		ItemReference: "EQ-7731",
		LoanValue:     decimal.RequireFromString("1500.00"),
		LoanDate:      "2024-03-15",
	}
}

func TestRecordLoan(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*domain.RecordLoanRequest)
		setupMocks    func(*mocks.MockLoanRepository)
		expectedCode  string
		validateLoan  func(*testing.T, *domain.Loan)
		expectCreated bool
	}{
		{
			name: "Success - loan recorded",
			setupMocks: func(loanRepo *mocks.MockLoanRepository) {
				loanRepo.On("Create", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
					return loan.ProcessNumber == "IMP-2024-0042"
				})).Return(nil)
			},
			expectCreated: true,
			validateLoan: func(t *testing.T, loan *domain.Loan) {
				assert.NotEqual(t, uuid.Nil, loan.ID)
				assert.Equal(t, "11222333000181", loan.BorrowerTaxID)
				assert.True(t, loan.LoanValue.Equal(decimal.RequireFromString("1500.00")))
				assert.Equal(t, 2024, loan.LoanDate.Year())
				assert.False(t, loan.CreatedAt.IsZero())
			},
		},
		{
			name:         "Failure - zero loan value",
			mutate:       func(r *domain.RecordLoanRequest) { r.LoanValue = decimal.Zero },
			expectedCode: customError.ErrCodeInvalidAmount,
		},
		{
			name:         "Failure - negative loan value",
			mutate:       func(r *domain.RecordLoanRequest) { r.LoanValue = decimal.RequireFromString("-10.00") },
			expectedCode: customError.ErrCodeInvalidAmount,
		},
		{
			name:         "Failure - missing process number",
			mutate:       func(r *domain.RecordLoanRequest) { r.ProcessNumber = "" },
			expectedCode: customError.ErrCodeMissingField,
		},
		{
			name:         "Failure - blank borrower name",
			mutate:       func(r *domain.RecordLoanRequest) { r.BorrowerName = "   " },
			expectedCode: customError.ErrCodeMissingField,
		},
		{
			name:         "Failure - missing item reference",
			mutate:       func(r *domain.RecordLoanRequest) { r.ItemReference = "" },
			expectedCode: customError.ErrCodeMissingField,
		},
		{
			name:         "Failure - unparseable loan date",
			mutate:       func(r *domain.RecordLoanRequest) { r.LoanDate = "15/03/2024" },
			expectedCode: customError.ErrCodeMissingField,
		},
		{
			name: "Failure - database error",
			setupMocks: func(loanRepo *mocks.MockLoanRepository) {
				loanRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
			},
			expectedCode: customError.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loanRepo := new(mocks.MockLoanRepository)
			returnRepo := new(mocks.MockReturnRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(loanRepo)
			}

			request := validLoanRequest()
			if tt.mutate != nil {
				tt.mutate(request)
			}

			loan, err := newService(loanRepo, returnRepo).RecordLoan(context.Background(), request)

			if tt.expectedCode != "" {
				require.Error(t, err)
				var businessErr *customError.BusinessError
				require.ErrorAs(t, err, &businessErr)
				assert.Equal(t, tt.expectedCode, businessErr.Code)
				assert.Nil(t, loan)
				if tt.setupMocks == nil {
					loanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, loan)
			if tt.validateLoan != nil {
				tt.validateLoan(t, loan)
			}
			loanRepo.AssertExpectations(t)
		})
	}
}

func TestRecordReturn(t *testing.T) {
	loanID := uuid.New()
	existingLoan := &domain.Loan{
		ID:        loanID,
		LoanValue: decimal.RequireFromString("1000.00"),
		LoanDate:  time.Now().AddDate(0, 0, -30),
	}

	validRequest := func() *domain.RecordReturnRequest {
		return &domain.RecordReturnRequest{
			ItemReference: "EQ-7731",
			ReturnedValue: decimal.RequireFromString("400.00"),
			ReturnDate:    "2024-04-10",
		}
	}

	t.Run("Success - return recorded", func(t *testing.T) {
		loanRepo := new(mocks.MockLoanRepository)
		returnRepo := new(mocks.MockReturnRepository)

		loanRepo.On("GetByID", mock.Anything, loanID).Return(existingLoan, nil)
		returnRepo.On("Create", mock.Anything, mock.MatchedBy(func(ret *domain.Return) bool {
			return ret.LoanID == loanID && ret.ReturnedValue.Equal(decimal.RequireFromString("400.00"))
		})).Return(nil)

		ret, err := newService(loanRepo, returnRepo).RecordReturn(context.Background(), loanID, validRequest())

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, ret.ID)
		assert.Equal(t, loanID, ret.LoanID)
		returnRepo.AssertExpectations(t)
	})

	t.Run("Success - zero-value return is allowed", func(t *testing.T) {
		loanRepo := new(mocks.MockLoanRepository)
		returnRepo := new(mocks.MockReturnRepository)

		loanRepo.On("GetByID", mock.Anything, loanID).Return(existingLoan, nil)
		returnRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		request := validRequest()
		request.ReturnedValue = decimal.Zero

		_, err := newService(loanRepo, returnRepo).RecordReturn(context.Background(), loanID, request)
		require.NoError(t, err)
	})

	t.Run("Failure - unknown loan leaves state untouched", func(t *testing.T) {
		loanRepo := new(mocks.MockLoanRepository)
		returnRepo := new(mocks.MockReturnRepository)

		unknown := uuid.New()
		loanRepo.On("GetByID", mock.Anything, unknown).Return(nil, sql.ErrNoRows)

		ret, err := newService(loanRepo, returnRepo).RecordReturn(context.Background(), unknown, validRequest())

		require.Error(t, err)
		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeUnknownLoan, businessErr.Code)
		assert.Nil(t, ret)
		returnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Failure - negative returned value", func(t *testing.T) {
		loanRepo := new(mocks.MockLoanRepository)
		returnRepo := new(mocks.MockReturnRepository)

		loanRepo.On("GetByID", mock.Anything, loanID).Return(existingLoan, nil)

		request := validRequest()
		request.ReturnedValue = decimal.RequireFromString("-1.00")

		_, err := newService(loanRepo, returnRepo).RecordReturn(context.Background(), loanID, request)

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeInvalidAmount, businessErr.Code)
		returnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Failure - missing return date", func(t *testing.T) {
		loanRepo := new(mocks.MockLoanRepository)
		returnRepo := new(mocks.MockReturnRepository)

		loanRepo.On("GetByID", mock.Anything, loanID).Return(existingLoan, nil)

		request := validRequest()
		request.ReturnDate = ""

		_, err := newService(loanRepo, returnRepo).RecordReturn(context.Background(), loanID, request)

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeMissingField, businessErr.Code)
	})
}

func TestGetSummary(t *testing.T) {
	loanID := uuid.New()
	loan := &domain.Loan{
		ID:        loanID,
		LoanValue: decimal.RequireFromString("1000.00"),
		LoanDate:  time.Now().AddDate(0, 0, -30),
	}

	returnsOf := func(values ...string) []*domain.Return {
		returns := make([]*domain.Return, 0, len(values))
		for _, v := range values {
			returns = append(returns, &domain.Return{
				ID:            uuid.New(),
				LoanID:        loanID,
				ReturnedValue: decimal.RequireFromString(v),
			})
		}
		return returns
	}

	t.Run("settled loan, returns in either order", func(t *testing.T) {
		for _, returns := range [][]*domain.Return{returnsOf("400.00", "600.00"), returnsOf("600.00", "400.00")} {
			loanRepo := new(mocks.MockLoanRepository)
			returnRepo := new(mocks.MockReturnRepository)

			loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
			returnRepo.On("GetByLoanID", mock.Anything, loanID).Return(returns, nil)

			summary, err := newService(loanRepo, returnRepo).GetSummary(context.Background(), loanID)

			require.NoError(t, err)
			assert.True(t, summary.Balance.IsZero())
			assert.True(t, summary.TotalReturned.Equal(decimal.RequireFromString("1000.00")))
			assert.Equal(t, domain.StatusSettled, summary.Status)
		}
	})

	t.Run("active loan with no returns", func(t *testing.T) {
		loanRepo := new(mocks.MockLoanRepository)
		returnRepo := new(mocks.MockReturnRepository)

		loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
		returnRepo.On("GetByLoanID", mock.Anything, loanID).Return([]*domain.Return{}, nil)

		summary, err := newService(loanRepo, returnRepo).GetSummary(context.Background(), loanID)

		require.NoError(t, err)
		assert.True(t, summary.Balance.Equal(loan.LoanValue))
		assert.Equal(t, domain.StatusActive, summary.Status)
	})

	t.Run("unknown loan", func(t *testing.T) {
		loanRepo := new(mocks.MockLoanRepository)
		returnRepo := new(mocks.MockReturnRepository)

		unknown := uuid.New()
		loanRepo.On("GetByID", mock.Anything, unknown).Return(nil, sql.ErrNoRows)

		summary, err := newService(loanRepo, returnRepo).GetSummary(context.Background(), unknown)

		require.Error(t, err)
		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeUnknownLoan, businessErr.Code)
		assert.Nil(t, summary)
	})
}

func TestListByStatus(t *testing.T) {
	now := time.Now()

	row := func(daysAgo int, loanValue, totalReturned string) *repository.LoanWithTotal {
		return &repository.LoanWithTotal{
			Loan: domain.Loan{
				ID:        uuid.New(),
				LoanValue: decimal.RequireFromString(loanValue),
				LoanDate:  now.AddDate(0, 0, -daysAgo),
			},
			TotalReturned: decimal.RequireFromString(totalReturned),
		}
	}

	rows := []*repository.LoanWithTotal{
		row(40, "1000.00", "0"),       // ACTIVE
		row(30, "1000.00", "250.00"),  // PARTIAL
		row(20, "1000.00", "1000.00"), // SETTLED
		row(10, "500.00", "700.00"),   // SURPLUS
	}

	t.Run("filter excludes loans with any returned value", func(t *testing.T) {
		loanRepo := new(mocks.MockLoanRepository)
		returnRepo := new(mocks.MockReturnRepository)
		loanRepo.On("List", mock.Anything).Return(rows, nil)

		summaries, err := newService(loanRepo, returnRepo).ListByStatus(context.Background(), domain.StatusActive)

		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.True(t, summaries[0].TotalReturned.IsZero())
	})

	t.Run("empty status returns everything in order", func(t *testing.T) {
		loanRepo := new(mocks.MockLoanRepository)
		returnRepo := new(mocks.MockReturnRepository)
		loanRepo.On("List", mock.Anything).Return(rows, nil)

		summaries, err := newService(loanRepo, returnRepo).ListByStatus(context.Background(), "")

		require.NoError(t, err)
		require.Len(t, summaries, 4)
		assert.Equal(t, domain.StatusActive, summaries[0].Status)
		assert.Equal(t, domain.StatusPartial, summaries[1].Status)
		assert.Equal(t, domain.StatusSettled, summaries[2].Status)
		assert.Equal(t, domain.StatusSurplus, summaries[3].Status)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		loanRepo := new(mocks.MockLoanRepository)
		returnRepo := new(mocks.MockReturnRepository)

		summaries, err := newService(loanRepo, returnRepo).ListByStatus(context.Background(), "VENCIDO")

		require.Error(t, err)
		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeUnknownStatus, businessErr.Code)
		assert.Nil(t, summaries)
		loanRepo.AssertNotCalled(t, "List", mock.Anything)
	})
}

func TestRefreshOverdue(t *testing.T) {
	now := time.Now()

	rows := []*repository.LoanWithTotal{
		{
			Loan: domain.Loan{
				ID:        uuid.New(),
				LoanValue: decimal.RequireFromString("1000.00"),
				LoanDate:  now.AddDate(0, -6, 0),
			},
			TotalReturned: decimal.RequireFromString("100.00"),
		},
		{
			Loan: domain.Loan{
				ID:        uuid.New(),
				LoanValue: decimal.RequireFromString("500.00"),
				LoanDate:  now.AddDate(0, 0, -5),
			},
			TotalReturned: decimal.Zero,
		},
	}

	loanRepo := new(mocks.MockLoanRepository)
	returnRepo := new(mocks.MockReturnRepository)
	loanRepo.On("List", mock.Anything).Return(rows, nil)

	overdue, err := newService(loanRepo, returnRepo).RefreshOverdue(context.Background())

	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, rows[0].Loan.ID, overdue[0].Loan.ID)
	assert.True(t, overdue[0].Overdue)
}

func TestTotalOutstanding(t *testing.T) {
	summaries := []*domain.LoanSummary{
		{Status: domain.StatusActive, Balance: decimal.RequireFromString("100.00")},
		{Status: domain.StatusPartial, Balance: decimal.RequireFromString("250.00")},
		{Status: domain.StatusSettled, Balance: decimal.Zero},
		{Status: domain.StatusSurplus, Balance: decimal.RequireFromString("-200.00")},
	}

	total := service.TotalOutstanding(summaries)
	assert.True(t, total.Equal(decimal.RequireFromString("350.00")))
}
