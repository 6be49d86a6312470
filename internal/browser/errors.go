package browser

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable      = errors.New("browser runtime unavailable")
	ErrSessionClosed    = errors.New("browser session closed")
	ErrElementNotFound  = errors.New("element not found")
	ErrNotInteractable  = errors.New("element not interactable")
	ErrNavigationFailed = errors.New("navigation failed")
)

// DriverError wraps a failure reported by the underlying automation driver.
type DriverError struct {
	Op  string
	Err error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver %s: %v", e.Op, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// WrapDriverError tags err with the operation that produced it.
func WrapDriverError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DriverError{Op: op, Err: err}
}

// IsTransient reports whether waiting longer might make the operation succeed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrElementNotFound) || errors.Is(err, ErrNotInteractable)
}
