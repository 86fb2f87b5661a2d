// Package apperror defines the error taxonomy shared by the service layers.
//
// Every typed error matches one sentinel through errors.Is, so callers can
// branch on the kind without caring about the concrete type.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input to an administrative or
	// registration operation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference to a nonexistent resource.
	ErrNotFound = errors.New("not found")
	// ErrIneligible marks a registration attempt that eligibility rejected.
	ErrIneligible = errors.New("not eligible")
	// ErrRemote marks a failed call to the durable registration store.
	ErrRemote = errors.New("remote store failure")
)

// ValidationError describes a single invalid input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for constructing a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound is shorthand for constructing a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Reason is implemented by eligibility outcomes. It keeps this package free
// of an import on the eligibility package.
type Reason interface {
	String() string
}

// IneligibleError carries the eligibility outcome that blocked registration.
type IneligibleError struct {
	Outcome Reason
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("registration not permitted: %s", e.Outcome)
}

func (e *IneligibleError) Is(target error) bool { return target == ErrIneligible }

// RemoteError wraps a durable-store failure with the operation name.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// Remote wraps err as a RemoteError. A nil err stays nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}
