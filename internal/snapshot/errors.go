package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt indicates a stored snapshot could not be decoded.
	ErrCorrupt = errors.New("snapshot corrupt")

	// ErrUnsupportedProvider indicates an unknown provider name.
	ErrUnsupportedProvider = errors.New("unsupported snapshot provider")

	// ErrMissingDSN indicates a network provider was configured without a DSN.
	ErrMissingDSN = errors.New("snapshot dsn required")
)

// Error wraps a persistence failure with the operation that caused it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("snapshot: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap returns nil for a nil err.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

func corrupt(op string, err error) error {
	return &Error{Op: op, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
}
