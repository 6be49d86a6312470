package runner

import (
	"errors"
	"fmt"
	"time"

	"formcheck/internal/browser"
	"formcheck/internal/polling"
	"formcheck/internal/scenario"
)

// Failure kinds as they appear in reports and metrics.
const (
	KindElementNotFound   = "ElementNotFound"
	KindAssertionTimeout  = "AssertionTimeout"
	KindNavigationFailure = "NavigationFailure"
	KindError             = "Error"
	KindPanic             = "Panic"
)

// ElementNotFoundError is a setup step whose target never became
// available within its bounded wait.
type ElementNotFoundError struct {
	Step     string
	Locator  browser.Locator
	Timeout  time.Duration
	Observed string
}

func (e *ElementNotFoundError) Error() string {
	msg := fmt.Sprintf("%s: %s not available within %v", e.Step, e.Locator, e.Timeout)
	if e.Observed != "" {
		msg += " (" + e.Observed + ")"
	}
	return msg
}

func (e *ElementNotFoundError) Unwrap() error {
	return browser.ErrElementNotFound
}

// AssertionTimeoutError is an assertion that never held within its
// bounded wait.
type AssertionTimeoutError struct {
	Assertion scenario.Assertion
	Expected  string
	Observed  string
	Timeout   time.Duration
}

func (e *AssertionTimeoutError) Error() string {
	observed := e.Observed
	if observed == "" {
		observed = "nothing"
	}
	return fmt.Sprintf("expected %s within %v, observed %s", e.Expected, e.Timeout, observed)
}

func (e *AssertionTimeoutError) Unwrap() error {
	return polling.ErrTimeout
}

// NavigationError is a page load that failed. At suite start it is fatal.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// IsNavigationError reports whether err is a NavigationError.
func IsNavigationError(err error) bool {
	var navErr *NavigationError
	return errors.As(err, &navErr)
}

// failureFor converts a step error into a report entry.
func failureFor(step string, err error) scenario.Failure {
	var (
		notFound *ElementNotFoundError
		timeout  *AssertionTimeoutError
		navErr   *NavigationError
	)
	kind := KindError
	switch {
	case errors.As(err, &notFound):
		kind = KindElementNotFound
	case errors.As(err, &timeout):
		kind = KindAssertionTimeout
	case errors.As(err, &navErr):
		kind = KindNavigationFailure
	}
	return scenario.Failure{Kind: kind, Step: step, Message: err.Error()}
}
