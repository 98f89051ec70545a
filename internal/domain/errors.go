package domain

import (
	"errors"
	"fmt"
)

// ErrNoRecord is returned by stores when no row matches a lookup. The chain
// resolver translates it into RECORD_NOT_FOUND or CHAIN_NOT_FOUND depending
// on which link of the chain was missing.
var ErrNoRecord = errors.New("transaction record not found")

// DomainError carries a machine-readable code alongside the message so
// callers can branch on the failure kind instead of matching strings.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	// ErrCodeRecordNotFound: no record at all exists for the supplied tx id.
	ErrCodeRecordNotFound = "RECORD_NOT_FOUND"
	// ErrCodeChainNotFound: a record exists but the prerequisite link for the
	// requested follow-on is missing or has the wrong type/status.
	ErrCodeChainNotFound = "CHAIN_NOT_FOUND"
	// ErrCodeBusinessDecline: the gateway processed the request and declined it.
	ErrCodeBusinessDecline = "BUSINESS_DECLINE"
	// ErrCodeValidation: the caller-supplied fields failed validation.
	ErrCodeValidation = "VALIDATION_ERROR"
)

func NewRecordNotFoundError(txID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeRecordNotFound,
		Message: fmt.Sprintf("no historic transaction found with ID %s", txID),
		Err:     ErrNoRecord,
	}
}

func NewChainNotFoundError(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    ErrCodeChainNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewBusinessDeclineError forwards the gateway's status detail verbatim.
func NewBusinessDeclineError(statusDetail string) *DomainError {
	return &DomainError{
		Code:    ErrCodeBusinessDecline,
		Message: statusDetail,
	}
}

func NewValidationError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: "invalid request",
		Err:     err,
	}
}

// IsErrorCode reports whether err is (or wraps) a DomainError with the code.
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
