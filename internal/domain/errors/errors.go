package errors

import (
	"errors"
	"fmt"
)

var (
	// Merchant errors
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrMerchantExists   = errors.New("user already has a shop")

	// Payment request errors
	ErrQuoteUnavailable       = errors.New("quote service unavailable")
	ErrSwapConstructionFailed = errors.New("swap construction failed")
	ErrAmountOverflow         = errors.New("amount exceeds representable range")

	// Verification errors
	ErrMalformedTransaction   = errors.New("malformed signed transaction")
	ErrSimulationRejected     = errors.New("transaction simulation rejected")
	ErrPaymentAlreadyRecorded = errors.New("payment already recorded for this transaction")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidStateTransition = errors.New("invalid payment state transition")

	// Network errors
	ErrNetworkUnavailable = errors.New("settlement network unavailable")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// UpstreamError wraps a failure from an external collaborator with the
// service name, so callers can log the origin without leaking it to clients.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}

// ValidationError represents a field-level validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// SimulationError carries the settlement network's reported error for a
// rejected dry-run. It always unwraps to ErrSimulationRejected.
type SimulationError struct {
	NetworkErr string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("transaction simulation rejected: %s", e.NetworkErr)
}

func (e *SimulationError) Unwrap() error {
	return ErrSimulationRejected
}

// NewSimulationError creates a new simulation error.
func NewSimulationError(networkErr string) *SimulationError {
	return &SimulationError{NetworkErr: networkErr}
}
