package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/vitalmed/loan-ledger/internal/domain"
	"github.com/vitalmed/loan-ledger/internal/session"
	customError "github.com/vitalmed/loan-ledger/pkg/errors"
	"github.com/vitalmed/loan-ledger/pkg/response"
	"github.com/vitalmed/loan-ledger/pkg/utils"
)

// Ledger is the service surface the handlers depend on.
type Ledger interface {
	RecordLoan(ctx context.Context, request *domain.RecordLoanRequest) (*domain.Loan, error)
	RecordReturn(ctx context.Context, loanID uuid.UUID, request *domain.RecordReturnRequest) (*domain.Return, error)
	GetSummary(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, error)
	ListByStatus(ctx context.Context, status string) ([]*domain.LoanSummary, error)
}

type LedgerHandler struct {
	service   Ledger
	validator *validator.Validate
}

func NewLedgerHandler(service Ledger) *LedgerHandler {
	return &LedgerHandler{
		service:   service,
		validator: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Decimals validate as float64; exact checks happen in the service.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterValidation("decimal_gt", func(fl validator.FieldLevel) bool {
		baseline, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		b, _ := baseline.Float64()
		return fl.Field().Float() > b
	})

	v.RegisterValidation("decimal_gte", func(fl validator.FieldLevel) bool {
		baseline, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		b, _ := baseline.Float64()
		return fl.Field().Float() >= b
	})

	v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		return utils.ValidCNPJ(fl.Field().String())
	})

	return v
}

// RecordLoan handles POST /loans
func (h *LedgerHandler) RecordLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.RecordLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loan, err := h.service.RecordLoan(r.Context(), &request)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, domain.RecordLoanResponse{Loan: loan})
}

// RecordReturn handles POST /loans/{loanId}/returns
func (h *LedgerHandler) RecordReturn(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "Invalid loan id", err)
		return
	}

	var request domain.RecordReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	ret, err := h.service.RecordReturn(r.Context(), loanID, &request)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, domain.RecordReturnResponse{Return: ret})
}

// GetSummary handles GET /loans/{loanId}/summary
func (h *LedgerHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "Invalid loan id", err)
		return
	}

	summary, err := h.service.GetSummary(r.Context(), loanID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, summary)
}

// ListLoans handles GET /loans?status=ACTIVE
func (h *LedgerHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))

	summaries, err := h.service.ListByStatus(r.Context(), status)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, domain.ListLoansResponse{Loans: summaries, Total: len(summaries)})
}

// ActorMiddleware puts the X-Actor header into the request context as
// the session principal.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get("X-Actor")
		ctx := session.WithPrincipal(r.Context(), session.Principal{Actor: actor})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeBusinessError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		response.InternalServerError(w, "Unexpected error", err)
		return
	}

	status := http.StatusInternalServerError
	switch businessErr.Code {
	case customError.ErrCodeUnknownLoan:
		status = http.StatusNotFound
	case customError.ErrCodeInvalidAmount, customError.ErrCodeMissingField, customError.ErrCodeUnknownStatus:
		status = http.StatusBadRequest
	}

	response.ErrorWithCode(w, status, businessErr.Code, businessErr.Message, businessErr.Err)
}
