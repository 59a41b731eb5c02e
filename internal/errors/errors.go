package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")

	// ErrRetryNotPossible is terminal: the failed payment has no legitimate retry path
	ErrRetryNotPossible = new(ErrCodeRetryNotPossible, "retry not possible")
	// ErrLockNotAcquired means the subscription is held by another processing run
	ErrLockNotAcquired = new(ErrCodeLockNotAcquired, "subscription is being processed")
	// ErrSerializationConflict is the only storage error retried by RetriableTx
	ErrSerializationConflict = new(ErrCodeSerializationConflict, "serialization conflict")
	ErrProcessor             = new(ErrCodeProcessor, "payment processor error")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrDatabase:              http.StatusInternalServerError,
		ErrNotFound:              http.StatusNotFound,
		ErrAlreadyExists:         http.StatusConflict,
		ErrValidation:            http.StatusBadRequest,
		ErrInvalidOperation:      http.StatusBadRequest,
		ErrSystem:                http.StatusInternalServerError,
		ErrRetryNotPossible:      http.StatusUnprocessableEntity,
		ErrLockNotAcquired:       http.StatusConflict,
		ErrSerializationConflict: http.StatusConflict,
		ErrProcessor:             http.StatusBadGateway,
	}
)

const (
	ErrCodeSystemError           = "system_error"
	ErrCodeNotFound              = "not_found"
	ErrCodeAlreadyExists         = "already_exists"
	ErrCodeValidation            = "validation_error"
	ErrCodeInvalidOperation      = "invalid_operation"
	ErrCodeDatabase              = "database_error"
	ErrCodeRetryNotPossible      = "retry_not_possible"
	ErrCodeLockNotAcquired       = "lock_not_acquired"
	ErrCodeSerializationConflict = "serialization_conflict"
	ErrCodeProcessor             = "processor_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is a passthrough to cockroachdb errors.Is so callers need a single import
func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsRetryNotPossible checks if a failed payment has reached a terminal retry state
func IsRetryNotPossible(err error) bool {
	return errors.Is(err, ErrRetryNotPossible)
}

// IsLockNotAcquired checks if a subscription lock was already held
func IsLockNotAcquired(err error) bool {
	return errors.Is(err, ErrLockNotAcquired)
}

// IsSerializationConflict checks if a transaction lost a serialization race
func IsSerializationConflict(err error) bool {
	return errors.Is(err, ErrSerializationConflict)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// CodeFromErr returns the machine code of the sentinel err is marked with
func CodeFromErr(err error) string {
	for e := range statusCodeMap {
		if errors.Is(err, e) {
			if ie, ok := e.(*InternalError); ok {
				return ie.Code
			}
		}
	}
	return ErrCodeSystemError
}
