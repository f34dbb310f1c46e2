package domain

import (
	"errors"
	"fmt"
)

var ErrPermDenied = errors.New("not enough permissions to execute this action")
var ErrNotFound = errors.New("not found")

// ValidationError rejects a request before any write happens.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// StorageError wraps a failed store call, keeping the operation name for logs.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return StorageError{Op: op, Err: err}
}
