package tasks

import (
	"errors"
	"fmt"
)

// AuthRequiredMessage is shown when an operation needs a login.
const AuthRequiredMessage = "Please login first"

// Fallback messages per operation.
const (
	FetchFailedMessage   = "Failed to fetch tasks"
	CreateFailedMessage  = "Failed to create task"
	UpdateFailedMessage  = "Failed to update task"
	DeleteFailedMessage  = "Failed to delete task"
	AddTimeFailedMessage = "Failed to update task time"
	InvalidDeltaMessage  = "Seconds to add must not be negative"
)

// AuthRequiredError is returned, without any network call, when no bearer
// credential is persisted.
type AuthRequiredError struct{}

func (e *AuthRequiredError) Error() string { return AuthRequiredMessage }

// IsAuthRequired reports whether err is an AuthRequiredError.
func IsAuthRequired(err error) bool {
	var authErr *AuthRequiredError
	return errors.As(err, &authErr)
}

// Op names a task store operation.
type Op string

const (
	OpFetch   Op = "fetch"
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpAddTime Op = "add-time"
)

// OpError is a failed round trip: the server rejected the request or it
// never completed. Message is what the user sees.
type OpError struct {
	Op      Op
	TaskID  string
	Message string
	Err     error
}

func (e *OpError) Error() string { return e.Message }

func (e *OpError) Unwrap() error { return e.Err }

// Detail renders the error with its operation and cause, for logs.
func (e *OpError) Detail() string {
	if e.TaskID != "" {
		return fmt.Sprintf("%s task %s: %s: %v", e.Op, e.TaskID, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

// IsOpError reports whether err is an OpError.
func IsOpError(err error) bool {
	var opErr *OpError
	return errors.As(err, &opErr)
}

// ErrNegativeDelta is returned by AddTime for negative deltas.
var ErrNegativeDelta = errors.New(InvalidDeltaMessage)
