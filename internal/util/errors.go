// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrUnauthorized      = errors.New("no caller identity")
	ErrForbidden         = errors.New("caller is not a party to this record")
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidState      = errors.New("action is not valid for the record's current status")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidInput      = errors.New("invalid input provided")
	ErrConflict          = errors.New("conflicting record already exists")
	ErrAlreadyRequested  = errors.New("cancellation already requested by caller")
	ErrNoSkillAvailable  = errors.New("no skill available to anchor the session")
	ErrSelfRequest       = errors.New("cannot send a session request to yourself")
	ErrNoConnection      = errors.New("no active connection between the two users")
	ErrDuplicateEntry    = errors.New("duplicate entry")
)

// IsError reports whether err wraps target. Thin alias over errors.Is so
// handlers and services read uniformly.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
