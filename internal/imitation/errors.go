package imitation

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownUser = errors.New("unknown user")
	ErrNoUsers     = errors.New("no users registered")

	// ErrRandomUserUnavailable is returned when a user picked at random could
	// not be imitated. It deliberately does not wrap ErrUnknownUser.
	ErrRandomUserUnavailable = errors.New("randomly selected user unavailable")

	ErrEmptyToken       = errors.New("empty token")
	ErrSentinelPosition = errors.New("sentinel in wrong position")
)

// StorageError wraps any failure coming from the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
