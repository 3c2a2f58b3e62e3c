package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrSessionOpen  = errors.New("a sleep session is already being tracked")
	ErrClosed       = errors.New("state manager closed")
	ErrStorage      = errors.New("storage failure")
)

// StorageError reports a failed persistence operation. It matches ErrStorage
// under errors.Is and unwraps to the driver error.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
