package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound         = errors.New("loan not found")
	ErrLoanAlreadyExists    = errors.New("loan already exists")
	ErrVehicleNotFound      = errors.New("vehicle not found")
	ErrVehicleAlreadyExists = errors.New("vehicle already exists")
	ErrInvalidTerms         = errors.New("invalid loan terms")
	ErrInvalidPayment       = errors.New("invalid payment")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrLoanClosed           = errors.New("loan is closed")
	ErrLoanBusy             = errors.New("loan is locked by another request")
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
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeLoanAlreadyExists    = "LOAN_ALREADY_EXISTS"
	ErrCodeVehicleNotFound      = "VEHICLE_NOT_FOUND"
	ErrCodeVehicleAlreadyExists = "VEHICLE_ALREADY_EXISTS"
	ErrCodeInvalidTerms         = "INVALID_TERMS"
	ErrCodeInvalidPayment       = "INVALID_PAYMENT"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeLoanClosed           = "LOAN_CLOSED"
	ErrCodeLoanBusy             = "LOAN_BUSY"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// CodeOf returns the business code carried by err, or "" when err is not a BusinessError.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanAlreadyExists(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyExists,
		fmt.Sprintf("Loan with ID %s already exists", loanID),
		ErrLoanAlreadyExists,
	)
}

func WrapVehicleNotFound(registrationNo string) *BusinessError {
	return NewBusinessError(
		ErrCodeVehicleNotFound,
		fmt.Sprintf("Vehicle %s not found", registrationNo),
		ErrVehicleNotFound,
	)
}

func WrapVehicleAlreadyExists(registrationNo string) *BusinessError {
	return NewBusinessError(
		ErrCodeVehicleAlreadyExists,
		fmt.Sprintf("Vehicle %s is already registered", registrationNo),
		ErrVehicleAlreadyExists,
	)
}

func WrapInvalidTerms(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTerms,
		reason,
		ErrInvalidTerms,
	)
}

func WrapInvalidPayment(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPayment,
		reason,
		ErrInvalidPayment,
	)
}

func WrapInvalidRequest(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRequest,
		"request validation failed",
		fmt.Errorf("%w: %v", ErrInvalidRequest, err),
	)
}

func WrapLoanClosed(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanClosed,
		fmt.Sprintf("Loan with ID %s is closed", loanID),
		ErrLoanClosed,
	)
}

func WrapLoanBusy(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanBusy,
		fmt.Sprintf("Loan with ID %s is being updated, retry shortly", loanID),
		ErrLoanBusy,
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
		"Cache operation failed",
		err,
	)
}
