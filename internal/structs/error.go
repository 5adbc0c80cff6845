package structs

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrNoRowsAffected     = errors.New("no rows affected")
	ErrNotFound           = errors.New("no rows in result set")
	ErrUniqueViolation    = errors.New("unique Violation error")
	ErrAlreadyExists      = errors.New("already exists")
	ErrCannotRemoveMaster = errors.New("cannot remove master admin")
	ErrNoActiveProcess    = errors.New("no active process")
	ErrRateLimited        = errors.New("rate limited")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError is a user input that failed a field rule. Message is shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConfigurationError means a required setting is missing. Fatal at startup.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s is not set", e.Key)
}

type GatewayError struct {
	Gateway string
	Op      string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Gateway, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

type ReconciliationError struct {
	Reason string
	Err    error
}

func (e *ReconciliationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reconciliation: %s: %v", e.Reason, e.Err)
	}
	return "reconciliation: " + e.Reason
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

type SignatureError struct {
	Reason string
}

func (e *SignatureError) Error() string {
	return "signature: " + e.Reason
}
