package errors

import (
	"errors"
	"fmt"
)

var (
	// Order errors
	ErrOrderNotFound       = errors.New("order not found")
	ErrItemNotFound        = errors.New("order item not found")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
	ErrDuplicateAdjustment = errors.New("duplicate adjustment label")

	// Payment errors
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrMissingPaymentMethod = errors.New("payment has no payment method")
	ErrMissingAmount        = errors.New("payment has neither an amount nor an order")
	ErrPaymentMethodUnknown = errors.New("unknown payment method")

	// Provider errors
	ErrUnsupportedAction     = errors.New("action not in provider capability set")
	ErrProviderNotFound      = errors.New("payment provider not found")
	ErrProviderUnavailable   = errors.New("payment provider unavailable")
	ErrProviderCommunication = errors.New("provider communication failed")

	// Lock errors
	ErrLockAcquisitionFailed = errors.New("failed to acquire lock")
	ErrLockNotHeld           = errors.New("lock not held")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
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

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
