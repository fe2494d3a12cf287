package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrUnknownLoan   = errors.New("loan not found")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingField  = errors.New("required field missing")
	ErrUnknownStatus = errors.New("unknown settlement status")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeUnknownLoan   = "UNKNOWN_LOAN"
	ErrCodeInvalidAmount = "INVALID_AMOUNT"
	ErrCodeMissingField  = "MISSING_FIELD"
	ErrCodeUnknownStatus = "UNKNOWN_STATUS"
	ErrCodeDatabaseError = "DATABASE_ERROR"
	ErrCodeCacheError    = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapUnknownLoan(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnknownLoan,
		fmt.Sprintf("Loan %s not found", loanID),
		ErrUnknownLoan,
	)
}

func WrapInvalidAmount(field, value string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Invalid %s: %s", field, value),
		ErrInvalidAmount,
	)
}

func WrapMissingField(field string) *BusinessError {
	return NewBusinessError(
		ErrCodeMissingField,
		fmt.Sprintf("Field %s is required", field),
		ErrMissingField,
	)
}

func WrapUnknownStatus(status string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnknownStatus,
		fmt.Sprintf("Status %s is not a settlement status", status),
		ErrUnknownStatus,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
