// Package apperrors defines the error taxonomy shared by the service,
// repository and realtime layers. Handlers match on the sentinels with
// errors.Is to pick the client-facing response; StoreError keeps persistence
// details out of anything sent to a client.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated marks a missing, invalid or expired credential.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotAuthorized marks an operation by a user who is not a chat
	// participant (or otherwise lacks access). The connection stays open.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotMutualFollowers marks a chat operation between users without an
	// accepted follow edge in both directions.
	ErrNotMutualFollowers = errors.New("mutual follow required")

	// ErrNotFound marks an absent chat, message or user.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed input: empty or oversize content, bad IDs.
	ErrValidation = errors.New("validation failed")
)

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

// Validation builds an error that matches ErrValidation under errors.Is while
// keeping msg as the full client-facing text.
func Validation(msg string) error {
	return &validationError{msg: msg}
}

// StoreError wraps a persistence failure. Its text is for logs; clients only
// ever see a generic failure message.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err as a StoreError for operation op. Returns nil if err is nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// IsStore reports whether err is (or wraps) a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
