package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"formcheck/internal/browser"
	"formcheck/internal/metrics"
	"formcheck/internal/polling"
	"formcheck/internal/scenario"
)

// Options configures a Runner.
type Options struct {
	BaseURL     string
	Wait        polling.Policy
	Concurrency int
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Runner executes scenarios against fresh browser sessions.
type Runner struct {
	sessions *browser.Manager
	opts     Options
	log      *slog.Logger
}

// New creates a Runner that opens sessions through sessions.
func New(sessions *browser.Manager, opts Options) *Runner {
	if opts.BaseURL == "" {
		opts.BaseURL = scenario.DefaultBaseURL
	}
	opts.Wait = opts.Wait.Or(polling.DefaultPolicy())
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{sessions: sessions, opts: opts, log: log}
}

// Preflight checks that the base URL can be loaded at all. When it cannot,
// no scenario could proceed, so the whole run is aborted.
func (r *Runner) Preflight(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess, err := r.open(ctx)
	if err != nil {
		return r.preflightError(ctx, err)
	}
	defer r.release(sess)

	if err := sess.Navigate(ctx, r.opts.BaseURL); err != nil {
		return r.preflightError(ctx, err)
	}
	return nil
}

// preflightError reports an interrupted preflight as the cancellation
// itself rather than as an unreachable application.
func (r *Runner) preflightError(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return &NavigationError{URL: r.opts.BaseURL, Err: err}
}

// Run executes every scenario and returns their results in input order.
// The only errors returned are a failed preflight, which aborts the
// run, and cancellation of ctx. Once ctx is cancelled no further scenario
// starts, and only the scenarios that started are reported.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) ([]scenario.Result, error) {
	if err := r.Preflight(ctx); err != nil {
		if ctx.Err() == nil {
			r.log.Error("preflight failed", "url", r.opts.BaseURL, "error", err)
		}
		return nil, err
	}

	if r.opts.Concurrency == 1 || len(scenarios) <= 1 {
		results := make([]scenario.Result, 0, len(scenarios))
		for _, s := range scenarios {
			if ctx.Err() != nil {
				break
			}
			results = append(results, r.RunScenario(ctx, s))
		}
		return results, r.interrupted(ctx, len(scenarios)-len(results))
	}

	results := make([]scenario.Result, len(scenarios))
	started := make([]bool, len(scenarios))

	pool := NewWorkerPool(min(r.opts.Concurrency, len(scenarios)))
	pool.Start()
	for i, s := range scenarios {
		if ctx.Err() != nil {
			break
		}
		pool.Submit(func(workerID int) error {
			// Queued scenarios are dropped once the run is interrupted.
			if ctx.Err() != nil {
				return nil
			}
			started[i] = true
			results[i] = r.RunScenario(ctx, s)
			return nil
		})
	}
	pool.Wait()
	pool.Stop()

	kept := results[:0]
	for i, res := range results {
		if started[i] {
			kept = append(kept, res)
		}
	}
	return kept, r.interrupted(ctx, len(scenarios)-len(kept))
}

func (r *Runner) interrupted(ctx context.Context, skipped int) error {
	err := ctx.Err()
	if err != nil {
		r.log.Warn("run interrupted", "skipped", skipped, "error", err)
	}
	return err
}

// RunScenario runs one scenario in its own session. It never returns an
// error: every problem, including a panic, becomes a failure on the result.
func (r *Runner) RunScenario(ctx context.Context, s scenario.Scenario) (res scenario.Result) {
	start := time.Now()
	res = scenario.Result{Scenario: s.Name}
	log := r.log.With("scenario", s.Name)

	defer func() {
		if p := recover(); p != nil {
			res.Failures = append(res.Failures, scenario.Failure{
				Kind:    KindPanic,
				Step:    "run",
				Message: fmt.Sprintf("panic: %v", p),
			})
		}
		res.Duration = time.Since(start)
		res.Outcome = scenario.OutcomePass
		if len(res.Failures) > 0 {
			res.Outcome = scenario.OutcomeFail
		}
		for _, f := range res.Failures {
			r.opts.Metrics.RecordFailure(f.Kind)
		}
		r.opts.Metrics.RecordScenario(string(res.Outcome), res.Duration)
		log.Info("scenario finished", "session", res.Session, "outcome", res.Outcome, "duration", res.Duration, "failures", len(res.Failures))
	}()

	sess, err := r.open(ctx)
	if err != nil {
		res.Failures = append(res.Failures, failureFor("open session", err))
		return res
	}
	defer r.release(sess)
	res.Session = sess.ID()
	log.Debug("scenario started", "session", sess.ID())

	// Isolation boundary: every scenario starts from a fresh load of the base URL.
	if err := r.navigate(ctx, sess, r.opts.BaseURL); err != nil {
		res.Failures = append(res.Failures, failureFor("navigate "+r.opts.BaseURL, err))
		return res
	}

	for _, a := range s.Setup {
		if err := r.perform(ctx, sess, a); err != nil {
			log.Debug("setup step failed", "step", a.String(), "error", err)
			res.Failures = append(res.Failures, failureFor(a.String(), err))
			return res
		}
	}

	for _, a := range s.Assertions {
		if err := r.check(ctx, sess, a); err != nil {
			log.Debug("assertion failed", "assertion", a.String(), "error", err)
			res.Failures = append(res.Failures, failureFor(a.String(), err))
		}
	}
	return res
}

func (r *Runner) open(ctx context.Context) (browser.Session, error) {
	sess, err := r.sessions.Open(ctx)
	if err != nil {
		return nil, err
	}
	r.opts.Metrics.SessionOpened()
	return sess, nil
}

func (r *Runner) release(sess browser.Session) {
	if err := r.sessions.Release(sess); err != nil {
		r.log.Warn("failed to close session", "session", sess.ID(), "error", err)
	}
	r.opts.Metrics.SessionClosed()
}
