// Package util provides logging, the error taxonomy shared by the topology
// generator, and small IPv4/ASN helpers.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below unwraps to one of these so callers
// can classify failures with errors.Is.
var (
	ErrPoolExhausted   = errors.New("address pool exhausted")
	ErrAddressInUse    = errors.New("address already issued")
	ErrUnsupportedMode = errors.New("topology generation mode not implemented")
	ErrInvariant       = errors.New("internal invariant violated")
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrValidation      = errors.New("validation failed")
)

// ExhaustionError reports that an AS ran out of address space in one of its
// pools. It is never retried: the generation run must be aborted.
type ExhaustionError struct {
	ASN     uint32
	Pool    string // "prefix", "router-link", "end-host"
	Details string
}

func (e *ExhaustionError) Error() string {
	msg := fmt.Sprintf("AS%d: %s pool exhausted", e.ASN, e.Pool)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *ExhaustionError) Unwrap() error {
	return ErrPoolExhausted
}

// NewExhaustionError creates a new exhaustion error
func NewExhaustionError(asn uint32, pool, details string) *ExhaustionError {
	return &ExhaustionError{ASN: asn, Pool: pool, Details: details}
}

// InvariantError marks a condition that can only arise from a defect in the
// generator, such as a switch-facing interface whose peer is not a switch.
type InvariantError struct {
	Operation string
	Details   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.Operation, e.Details)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// NewInvariantError creates a new invariant error
func NewInvariantError(operation, format string, args ...interface{}) *InvariantError {
	return &InvariantError{Operation: operation, Details: fmt.Sprintf(format, args...)}
}

// AddressInUseError is returned when a caller supplies an end-host address
// that has already been handed out.
type AddressInUseError struct {
	ASN     uint32
	Address string
}

func (e *AddressInUseError) Error() string {
	return fmt.Sprintf("AS%d: end host address %s already issued", e.ASN, e.Address)
}

func (e *AddressInUseError) Unwrap() error {
	return ErrAddressInUse
}

// IsFatal reports whether err leaves generator state unusable. Misuse errors
// (address in use, invalid input) are rejected before any mutation.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPoolExhausted) || errors.Is(err, ErrInvariant)
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return NewValidationError(v.errors...)
}
