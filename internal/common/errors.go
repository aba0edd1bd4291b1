// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Error kinds for the persistence and query layer. Callers classify
// failures with errors.Is rather than inspecting message text.
var (
	// ErrValidation indicates a malformed value rejected before any I/O.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a primary-key or unique-constraint conflict on insert.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrPrecondition indicates a missing required argument, such as the
	// reassignment target for a category move.
	ErrPrecondition = errors.New("precondition failed")
	// ErrNotFound indicates a lookup miss where an error (rather than an
	// absent-value result) is the right shape, e.g. deleting a category
	// that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDatabase indicates any other storage-engine failure.
	ErrDatabase = errors.New("database error")
	// ErrNotConnected indicates a statement was issued while no handle is open.
	ErrNotConnected = errors.New("database not connected")
	// ErrConfig indicates a fatal configuration problem, such as a missing
	// migrations directory.
	ErrConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
