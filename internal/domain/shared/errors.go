// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies
// beyond uuid for event identifiers.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrInvalidFormat = errors.New("invalid format")

	// State errors
	ErrInvalidState = errors.New("invalid state")

	// Provider errors
	ErrTransport   = errors.New("provider transport error")
	ErrUnavailable = errors.New("authentication unavailable")
	ErrChallenge   = errors.New("challenge unresolved")
	ErrCache       = errors.New("challenge cache unavailable")
	ErrRateLimited = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "session", "challenge", "ecoledirecte"
	Op      string // Operation that failed, e.g., "Send", "GetSession"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Session domain errors
var (
	ErrEmptyCredentials = NewDomainError("session", "Validate", ErrEmptyValue, "username and password are required")
	ErrNoAccounts       = NewDomainError("session", "Build", ErrInvalidFormat, "login response carries no account")
	ErrMissingStudentID = NewDomainError("session", "Validate", ErrInvalidInput, "student has no identifier")
)

// Challenge domain errors
var (
	ErrAnswerStoreMissing = NewDomainError("challenge", "Load", ErrCache, "answer store is missing; provide it before enabling this integration")
	ErrRetryBudgetSpent   = NewDomainError("challenge", "Resolve", ErrChallenge, "verification attempts exhausted; curate the answer store and reload the integration")
)

// IsTransport checks if the error was classified by the transport layer.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsChallenge checks if the error signals an unresolved login challenge,
// i.e. the operator must curate the answer store.
func IsChallenge(err error) bool {
	return errors.Is(err, ErrChallenge)
}

// IsCache checks if the error signals an unusable challenge answer store.
// This is a fatal configuration condition, never a transient failure.
func IsCache(err error) bool {
	return errors.Is(err, ErrCache)
}

// IsUnavailable checks if the error is the generic "no session" outcome of
// a failed handshake.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsRetryable checks if the operation can be retried later without
// operator involvement.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrRateLimited)
}
