package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures so handlers can pick a status code.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindCapacity     ErrorKind = "capacity"
	KindConflict     ErrorKind = "conflict"
	KindForbidden    ErrorKind = "forbidden"
	KindValidation   ErrorKind = "validation"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInternal     ErrorKind = "internal"
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrCapacity     = &AppError{Kind: KindCapacity}
	ErrConflict     = &AppError{Kind: KindConflict}
	ErrForbidden    = &AppError{Kind: KindForbidden}
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrUnauthorized = &AppError{Kind: KindUnauthorized}
	ErrInternal     = &AppError{Kind: KindInternal}
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError of the same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewNotFound(format string, args ...any) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewCapacity(format string, args ...any) error {
	return &AppError{Kind: KindCapacity, Message: fmt.Sprintf(format, args...)}
}

func NewConflict(format string, args ...any) error {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewForbidden(format string, args ...any) error {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NewValidation(format string, args ...any) error {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorized(format string, args ...any) error {
	return &AppError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// NewInternal hides err from the caller-facing message but keeps it for logs.
func NewInternal(message string, err error) error {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns KindInternal for errors that are not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Internal server error"
}
