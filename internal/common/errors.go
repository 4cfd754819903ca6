package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure taxonomy. Extraction and reconciliation failures are captured as
// ERROR records or row statuses carrying one of these causes; none of them
// aborts a batch.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnknownTicket       = errors.New("unknown ticket type")
	ErrPNRNotFound         = errors.New("pnr not found in ticket")
	ErrNoPassengers        = errors.New("no passengers found")
	ErrLookupFailed        = errors.New("pnr lookup failed")
	ErrMergeFailed         = errors.New("passenger merge failed")
	ErrRegistryLookup      = errors.New("approved name not found in registry")
	ErrDuplicateUnresolved = errors.New("duplicate match unresolved")
	ErrStoreUnavailable    = errors.New("record store unavailable")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
