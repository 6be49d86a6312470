package polling

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is matched by every TimeoutError.
var ErrTimeout = errors.New("condition not met before timeout")

// TimeoutError reports a condition that never held within its policy.
type TimeoutError struct {
	Timeout  time.Duration
	Attempts int
	Observed string
}

func (e *TimeoutError) Error() string {
	if e.Observed == "" {
		return fmt.Sprintf("condition not met after %v (%d attempts)", e.Timeout, e.Attempts)
	}
	return fmt.Sprintf("condition not met after %v (%d attempts), last observed: %s", e.Timeout, e.Attempts, e.Observed)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Probe checks a condition once. observed describes what was seen and is
// kept for diagnostics; a non-nil error stops waiting immediately.
type Probe func(ctx context.Context) (done bool, observed string, err error)

// Until runs probe immediately and then once per interval until it reports
// done, fails, the policy timeout elapses or ctx is cancelled. The last
// observation is returned in every case.
func Until(ctx context.Context, p Policy, probe Probe) (string, error) {
	p = p.Or(DefaultPolicy())

	wctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	var observed string
	attempts := 0
	timeout := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return &TimeoutError{Timeout: p.Timeout, Attempts: attempts, Observed: observed}
	}

	for {
		attempts++
		done, obs, err := probe(wctx)
		if obs != "" {
			observed = obs
		}
		if err != nil {
			// A probe that died on our own deadline is a timeout, not a failure.
			if wctx.Err() != nil {
				return observed, timeout()
			}
			return observed, err
		}
		if done {
			return observed, nil
		}

		select {
		case <-wctx.Done():
			return observed, timeout()
		case <-ticker.C:
		}
	}
}
