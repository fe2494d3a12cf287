package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vitalmed/loan-ledger/internal/config"
	"github.com/vitalmed/loan-ledger/internal/domain"
	"github.com/vitalmed/loan-ledger/internal/repository"
	"github.com/vitalmed/loan-ledger/internal/session"
	customError "github.com/vitalmed/loan-ledger/pkg/errors"
	"github.com/vitalmed/loan-ledger/pkg/utils"
)

const overdueSetKey = "loans:overdue"

type LedgerService struct {
	LoanRepo   repository.LoanRepository
	ReturnRepo repository.ReturnRepository
	redis      *redis.Client
	config     *config.Config
}

func NewLedgerService(
	loanRepo repository.LoanRepository,
	returnRepo repository.ReturnRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *LedgerService {
	return &LedgerService{
		LoanRepo:   loanRepo,
		ReturnRepo: returnRepo,
		redis:      redisClient,
		config:     cfg,
	}
}

// RecordLoan validates and appends a new loan. Nothing else is mutated.
func (s *LedgerService) RecordLoan(ctx context.Context, request *domain.RecordLoanRequest) (*domain.Loan, error) {
	required := map[string]string{
		"process_number":  request.ProcessNumber,
		"borrower_tax_id": request.BorrowerTaxID,
		"borrower_name":   request.BorrowerName,
		"item_reference":  request.ItemReference,
		"loan_date":       request.LoanDate,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return nil, customError.WrapMissingField(field)
		}
	}

	if !request.LoanValue.IsPositive() {
		return nil, customError.WrapInvalidAmount("loan_value", request.LoanValue.String())
	}

	loanDate, err := utils.ParseDate(request.LoanDate)
	if err != nil {
		return nil, customError.WrapMissingField("loan_date")
	}

	var exitDate *time.Time
	if request.ExitDate != "" {
		parsed, err := utils.ParseDate(request.ExitDate)
		if err != nil {
			return nil, customError.WrapMissingField("exit_date")
		}
		exitDate = &parsed
	}

	loan := &domain.Loan{
		ID:              uuid.New(),
		ProcessNumber:   request.ProcessNumber,
		BorrowerTaxID:   utils.OnlyDigits(request.BorrowerTaxID),
		BorrowerName:    request.BorrowerName,
		ItemReference:   request.ItemReference,
		ItemDescription: request.ItemDescription,
		LoanValue:       request.LoanValue,
		LoanDate:        loanDate,
		ExitDate:        exitDate,
		ImportProcess:   request.ImportProcess,
		Notes:           request.Notes,
		CreatedAt:       time.Now(),
	}

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	logrus.WithFields(logrus.Fields{
		"loan_id":        loan.ID,
		"process_number": loan.ProcessNumber,
		"loan_value":     loan.LoanValue.String(),
		"actor":          session.FromContext(ctx).Actor,
	}).Info("loan recorded")

	return loan, nil
}

// RecordReturn validates and appends a return against an existing loan.
// The loan row is never touched; balance and status are derived on read.
func (s *LedgerService) RecordReturn(ctx context.Context, loanID uuid.UUID, request *domain.RecordReturnRequest) (*domain.Return, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUnknownLoan(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if request.ReturnedValue.IsNegative() {
		return nil, customError.WrapInvalidAmount("returned_value", request.ReturnedValue.String())
	}

	if strings.TrimSpace(request.ItemReference) == "" {
		return nil, customError.WrapMissingField("item_reference")
	}

	if strings.TrimSpace(request.ReturnDate) == "" {
		return nil, customError.WrapMissingField("return_date")
	}

	returnDate, err := utils.ParseDate(request.ReturnDate)
	if err != nil {
		return nil, customError.WrapMissingField("return_date")
	}

	var writeoffDate *time.Time
	if request.WriteoffDate != "" {
		parsed, err := utils.ParseDate(request.WriteoffDate)
		if err != nil {
			return nil, customError.WrapMissingField("writeoff_date")
		}
		writeoffDate = &parsed
	}

	ret := &domain.Return{
		ID:              uuid.New(),
		LoanID:          loan.ID,
		ItemReference:   request.ItemReference,
		ItemDescription: request.ItemDescription,
		ReturnedValue:   request.ReturnedValue,
		ReturnDate:      returnDate,
		WriteoffDate:    writeoffDate,
		Notes:           request.Notes,
		CreatedAt:       time.Now(),
	}

	if err := s.ReturnRepo.Create(ctx, ret); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, loan.ID)

	logrus.WithFields(logrus.Fields{
		"loan_id":        loan.ID,
		"return_id":      ret.ID,
		"returned_value": ret.ReturnedValue.String(),
		"actor":          session.FromContext(ctx).Actor,
	}).Info("return recorded")

	return ret, nil
}

// GetSummary computes the derived view for one loan: exact total of its
// returns, outstanding balance and settlement status.
func (s *LedgerService) GetSummary(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, error) {
	if cached := s.cachedSummary(ctx, loanID); cached != nil {
		return cached, nil
	}

	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUnknownLoan(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	returns, err := s.ReturnRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	total := domain.SumReturns(returns)
	summary := domain.Summarize(loan, total, time.Now(), s.config.OverdueThreshold())

	s.cacheSummary(ctx, summary)

	return summary, nil
}

// ListByStatus returns summaries for every loan matching the given
// settlement status, ordered by loan date then id. An empty status
// returns all loans.
func (s *LedgerService) ListByStatus(ctx context.Context, status string) ([]*domain.LoanSummary, error) {
	if status != "" && !domain.ValidStatus(status) {
		return nil, customError.WrapUnknownStatus(status)
	}

	rows, err := s.LoanRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := time.Now()
	threshold := s.config.OverdueThreshold()

	summaries := make([]*domain.LoanSummary, 0, len(rows))
	for _, row := range rows {
		loan := row.Loan
		summary := domain.Summarize(&loan, row.TotalReturned, now, threshold)
		if status == "" || summary.Status == status {
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}

// RefreshOverdue recomputes the set of overdue, unsettled loans and
// caches their ids for cheap dashboard reads. Used by the scheduler.
func (s *LedgerService) RefreshOverdue(ctx context.Context) ([]*domain.LoanSummary, error) {
	summaries, err := s.ListByStatus(ctx, "")
	if err != nil {
		return nil, err
	}

	overdue := make([]*domain.LoanSummary, 0)
	ids := make([]interface{}, 0)
	for _, summary := range summaries {
		if summary.Overdue {
			overdue = append(overdue, summary)
			ids = append(ids, summary.Loan.ID.String())
		}
	}

	if s.redis != nil {
		pipe := s.redis.TxPipeline()
		pipe.Del(ctx, overdueSetKey)
		if len(ids) > 0 {
			pipe.SAdd(ctx, overdueSetKey, ids...)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).Warn("caching overdue loan set")
		}
	}

	return overdue, nil
}

// TotalOutstanding sums the open balance over a set of summaries.
// Settled and surplus loans contribute nothing.
func TotalOutstanding(summaries []*domain.LoanSummary) decimal.Decimal {
	total := decimal.Zero
	for _, summary := range summaries {
		if summary.Status == domain.StatusActive || summary.Status == domain.StatusPartial {
			total = total.Add(summary.Balance)
		}
	}
	return total
}

func summaryCacheKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:summary:%s", loanID)
}

func (s *LedgerService) cachedSummary(ctx context.Context, loanID uuid.UUID) *domain.LoanSummary {
	if s.redis == nil {
		return nil
	}

	payload, err := s.redis.Get(ctx, summaryCacheKey(loanID)).Bytes()
	if err != nil {
		return nil
	}

	var summary domain.LoanSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil
	}

	return &summary
}

func (s *LedgerService) cacheSummary(ctx context.Context, summary *domain.LoanSummary) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, summaryCacheKey(summary.Loan.ID), payload, s.config.SummaryCacheTTL()).Err(); err != nil {
		logrus.WithError(err).Warn("caching loan summary")
	}
}

func (s *LedgerService) invalidateSummary(ctx context.Context, loanID uuid.UUID) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(ctx, summaryCacheKey(loanID)).Err(); err != nil {
		logrus.WithError(err).Warn("invalidating loan summary cache")
	}
}
