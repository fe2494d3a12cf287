package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vitalmed/loan-ledger/internal/domain"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RecordLoan(ctx context.Context, request *domain.RecordLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLedger) RecordReturn(ctx context.Context, loanID uuid.UUID, request *domain.RecordReturnRequest) (*domain.Return, error) {
	args := m.Called(ctx, loanID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Return), args.Error(1)
}

func (m *MockLedger) GetSummary(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanSummary), args.Error(1)
}

func (m *MockLedger) ListByStatus(ctx context.Context, status string) ([]*domain.LoanSummary, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanSummary), args.Error(1)
}
