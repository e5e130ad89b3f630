// Package service holds the error taxonomy shared by the use-case packages.
package service

import (
	"errors"
	"fmt"

	"clinic/backend/internal/lock"
	"clinic/backend/internal/store"
)

// NotAvailableMessage is reported for every booking conflict without naming
// the booking that caused it.
const NotAvailableMessage = "Doctor is not available at the specified time"

// ValidationError is malformed or out-of-policy input.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func Invalid(msg string) error {
	return &ValidationError{msg: msg}
}

func Invalidf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string {
	return e.msg
}

func NotFound(msg string) error {
	return &NotFoundError{msg: msg}
}

func NotFoundf(format string, args ...any) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

// ConflictError is a booking rejected because the doctor is busy.
type ConflictError struct{}

func (e *ConflictError) Error() string {
	return NotAvailableMessage
}

func Conflict() error {
	return &ConflictError{}
}

// TranslateBookingError maps storage conflicts and lock contention onto
// ConflictError and leaves everything else untouched.
func TranslateBookingError(err error) error {
	if errors.Is(err, store.ErrConflict) || errors.Is(err, lock.ErrNotAcquired) {
		return Conflict()
	}
	return err
}
