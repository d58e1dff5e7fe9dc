// Package errors defines the domain error taxonomy shared across services.
package errors

import "fmt"

// DomainError is a business error with a stable machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Retryable reports whether the caller may safely retry the same request
// unchanged. Only concurrency conflicts and store outages qualify.
func (e *DomainError) Retryable() bool {
	return e.Code == CodeConcurrentModification || e.Code == CodeSystemFailure
}

// Error codes surfaced to clients.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeDuplicateTransaction   = "DUPLICATE_TRANSACTION"
	CodeInsufficientFunds      = "INSUFFICIENT_FUNDS"
	CodeLimitExceeded          = "LIMIT_EXCEEDED"
	CodeFraudBlocked           = "FRAUD_BLOCKED"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeSystemFailure          = "SYSTEM_FAILURE"
)

func Validation(msg string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: msg}
}

func NotFound(msg string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func Unauthorized(msg string) *DomainError {
	return &DomainError{Code: CodeUnauthorized, Message: msg}
}

// DuplicateTransaction is returned when an idempotency key has already been
// used. The reference id of the original transaction is embedded so the
// client can look it up.
func DuplicateTransaction(existingRef string) *DomainError {
	return &DomainError{
		Code:    CodeDuplicateTransaction,
		Message: fmt.Sprintf("duplicate transaction, original ref: %s", existingRef),
	}
}

var (
	ErrInsufficientFunds = &DomainError{
		Code:    CodeInsufficientFunds,
		Message: "insufficient balance",
	}
	ErrDailyLimitExceeded = &DomainError{
		Code:    CodeLimitExceeded,
		Message: "daily transfer limit exceeded",
	}
	ErrFraudBlocked = &DomainError{
		Code:    CodeFraudBlocked,
		Message: "transaction blocked due to suspicious activity, contact support",
	}
	ErrConcurrentModification = &DomainError{
		Code:    CodeConcurrentModification,
		Message: "concurrent modification detected, please retry",
	}
	ErrSystemFailure = &DomainError{
		Code:    CodeSystemFailure,
		Message: "temporary system failure, please retry",
	}
)
