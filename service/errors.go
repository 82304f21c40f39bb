package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. Callers test them with errors.Is;
// the transport maps each one onto a gRPC status code.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrSubjectNotAssigned = errors.New("subject is not assigned to student")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// NotFoundError reports a missing entity. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	if e.Key == nil {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s not found: %v", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Key: key}
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
