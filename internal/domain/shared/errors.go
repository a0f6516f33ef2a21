package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
// This lets errors.Is(err, shared.ErrStorage) match any wrapped storage failure.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes, grouped by the failure taxonomy the chat flows react to.
const (
	CodeInvalidInput           = "INVALID_INPUT"
	CodeInvalidPage            = "INVALID_PAGE"
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidState           = "INVALID_STATE"
	CodeStorageFailure         = "STORAGE_FAILURE"
	CodeSettlementInconsistent = "SETTLEMENT_INCONSISTENT"
)

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrStorage      = NewDomainError(CodeStorageFailure, "Storage operation failed")

	// ErrSettlementInconsistent is returned when a settlement could not mark every
	// requested product. The transaction is rolled back before it is returned.
	ErrSettlementInconsistent = NewDomainError(CodeSettlementInconsistent, "Trade settlement could not be applied to every product")
)

// NewValidationError creates a validation failure with a specific code
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(code, message)
}

// WrapStorage wraps a gateway error as a storage failure.
// Domain errors pass through untouched so NotFound and friends keep their meaning.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return &DomainError{
		Code:    CodeStorageFailure,
		Message: op + " failed",
		Cause:   err,
	}
}

// IsValidation reports whether err is a user-input failure
func IsValidation(err error) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == CodeInvalidInput || de.Code == CodeInvalidPage
}
