package application

import (
	"errors"
	"fmt"

	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

// Errors surfaced to callers of Session and Notes. Compare with errors.Is.
var (
	// ErrAlreadyProvisioned is returned when onboarding runs against a store
	// that already has a password.
	ErrAlreadyProvisioned = driven.ErrAlreadyProvisioned

	// ErrAuthFailure is returned for a wrong password. It deliberately carries
	// no detail about which check failed.
	ErrAuthFailure = errors.New("authentication failed")

	// ErrInvalidTitle is returned for empty or otherwise unusable note titles.
	ErrInvalidTitle = errors.New("invalid note title")

	// ErrDecryption is returned when a stored note fails authentication.
	ErrDecryption = driven.ErrDecryption

	// ErrEmptyPassword is returned when the password provider yields "".
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrNoteExists is returned by Notes.Create when the title is taken.
	ErrNoteExists = driven.ErrNoteExists

	// ErrSessionClosed is returned by every Notes operation after Close.
	ErrSessionClosed = errors.New("session closed")
)

// StorageError reports a failure of the underlying store (disk full,
// permission denied, corrupt database file). It is never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is or wraps a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
