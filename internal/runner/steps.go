package runner

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"formcheck/internal/browser"
	"formcheck/internal/polling"
	"formcheck/internal/scenario"
)

func (r *Runner) navigate(ctx context.Context, sess browser.Session, target string) error {
	if err := sess.Navigate(ctx, target); err != nil {
		return &NavigationError{URL: target, Err: err}
	}
	return nil
}

// perform executes one setup action, waiting for its target to be attached
// and interactable.
func (r *Runner) perform(ctx context.Context, sess browser.Session, a scenario.Action) error {
	switch a.Kind {
	case scenario.ActionNavigate:
		return r.navigate(ctx, sess, resolveURL(r.opts.BaseURL, a.URL))
	case scenario.ActionFill, scenario.ActionClick:
	default:
		return fmt.Errorf("unknown action %q", a.Kind)
	}

	policy := a.Wait.Or(r.opts.Wait)
	observed, err := polling.Until(ctx, policy, func(ctx context.Context) (bool, string, error) {
		el, err := sess.Find(ctx, a.Target)
		if errors.Is(err, browser.ErrElementNotFound) {
			return false, "not attached", nil
		}
		if err != nil {
			return false, "", err
		}
		if a.Kind == scenario.ActionFill {
			err = el.Fill(ctx, a.Value)
		} else {
			err = el.Click(ctx)
		}
		if browser.IsTransient(err) {
			return false, "attached but not interactable", nil
		}
		return err == nil, "", err
	})
	if errors.Is(err, polling.ErrTimeout) {
		return &ElementNotFoundError{Step: a.String(), Locator: a.Target, Timeout: policy.Timeout, Observed: observed}
	}
	return err
}

// check evaluates one assertion within its bounded wait.
func (r *Runner) check(ctx context.Context, sess browser.Session, a scenario.Assertion) error {
	probe, err := probeFor(sess, a)
	if err != nil {
		return err
	}
	policy := a.Wait.Or(r.opts.Wait)
	observed, err := polling.Until(ctx, policy, probe)
	if errors.Is(err, polling.ErrTimeout) {
		return &AssertionTimeoutError{Assertion: a, Expected: a.Expected(), Observed: observed, Timeout: policy.Timeout}
	}
	return err
}

func probeFor(sess browser.Session, a scenario.Assertion) (polling.Probe, error) {
	switch a.Kind {
	case scenario.AssertTitle:
		re, err := regexp.Compile(a.Pattern)
		if err != nil {
			return nil, fmt.Errorf("title pattern: %w", err)
		}
		return func(ctx context.Context) (bool, string, error) {
			title, err := sess.Title(ctx)
			if err != nil {
				return false, "", err
			}
			return re.MatchString(title), fmt.Sprintf("title %q", title), nil
		}, nil

	case scenario.AssertVisible:
		return elementProbe(sess, a.Target, func(ctx context.Context, el browser.Element) (bool, string, error) {
			visible, err := el.Visible(ctx)
			if visible {
				return true, "visible", err
			}
			return false, "attached but hidden", err
		}), nil

	case scenario.AssertText:
		return elementProbe(sess, a.Target, func(ctx context.Context, el browser.Element) (bool, string, error) {
			text, err := el.Text(ctx)
			return strings.Contains(text, a.Text), fmt.Sprintf("text %q", text), err
		}), nil

	case scenario.AssertDisabled:
		return elementProbe(sess, a.Target, func(ctx context.Context, el browser.Element) (bool, string, error) {
			disabled, err := el.Disabled(ctx)
			if disabled {
				return true, "disabled", err
			}
			return false, "enabled", err
		}), nil
	}
	return nil, fmt.Errorf("unknown assertion %q", a.Kind)
}

// elementProbe resolves loc on every attempt, since the DOM may replace the
// node between checks, then applies state.
func elementProbe(sess browser.Session, loc browser.Locator, state func(context.Context, browser.Element) (bool, string, error)) polling.Probe {
	return func(ctx context.Context) (bool, string, error) {
		el, err := sess.Find(ctx, loc)
		if errors.Is(err, browser.ErrElementNotFound) {
			return false, "not attached", nil
		}
		if err != nil {
			return false, "", err
		}
		ok, observed, err := state(ctx, el)
		if browser.IsTransient(err) {
			return false, observed, nil
		}
		return ok, observed, err
	}
}

// resolveURL makes ref absolute against base. Bases with a fragment use
// hash routing, so relative routes are appended to the fragment.
func resolveURL(base, ref string) string {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	if strings.Contains(base, "#") {
		route := strings.TrimPrefix(ref, "#")
		return strings.TrimRight(base, "/") + "/" + strings.TrimPrefix(route, "/")
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
