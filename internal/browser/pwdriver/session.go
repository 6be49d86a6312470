package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"formcheck/internal/browser"

	"github.com/playwright-community/playwright-go"
)

// Session is a single Playwright browser context and page.
type Session struct {
	id             string
	bctx           playwright.BrowserContext
	page           playwright.Page
	navTimeout     time.Duration
	attemptTimeout time.Duration
}

func (s *Session) ID() string {
	return s.id
}

type gotoResult struct {
	resp playwright.Response
	err  error
}

// Navigate loads url and waits for the load event. Cancelling ctx stops the
// wait; the load itself is abandoned when the session closes.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan gotoResult, 1)
	go func() {
		resp, err := s.page.Goto(url, playwright.PageGotoOptions{
			Timeout:   playwright.Float(budget(ctx, s.navTimeout)),
			WaitUntil: playwright.WaitUntilStateLoad,
		})
		done <- gotoResult{resp: resp, err: err}
	}()

	var res gotoResult
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		return fmt.Errorf("%w: %s: %v", browser.ErrNavigationFailed, url, res.err)
	}
	// Hash-only navigation has no response.
	if res.resp != nil && res.resp.Status() >= 400 {
		return fmt.Errorf("%w: %s: status %d", browser.ErrNavigationFailed, url, res.resp.Status())
	}
	return nil
}

func (s *Session) Title(ctx context.Context) (string, error) {
	title, err := s.page.Title()
	if err != nil {
		return "", browser.WrapDriverError("title", err)
	}
	return title, nil
}

// Find resolves loc against the current DOM. Multiple matches resolve to
// the first one in document order.
func (s *Session) Find(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	l := s.locator(loc)
	n, err := l.Count()
	if err != nil {
		return nil, browser.WrapDriverError("count "+loc.String(), err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	return &element{loc: l.First(), desc: loc.String(), attempt: s.attemptTimeout}, nil
}

func (s *Session) locator(loc browser.Locator) playwright.Locator {
	switch {
	case loc.Role != "":
		opts := playwright.PageGetByRoleOptions{Exact: playwright.Bool(loc.Exact)}
		if loc.Name != "" {
			opts.Name = loc.Name
		}
		return s.page.GetByRole(playwright.AriaRole(loc.Role), opts)
	case loc.Text != "":
		return s.page.GetByText(loc.Text, playwright.PageGetByTextOptions{Exact: playwright.Bool(loc.Exact)})
	default:
		return s.page.Locator(loc.CSS)
	}
}

// Close tears down the page and its browser context.
func (s *Session) Close() error {
	var lastErr error
	if err := s.page.Close(); err != nil {
		lastErr = browser.WrapDriverError("close page", err)
	}
	if err := s.bctx.Close(); err != nil {
		lastErr = browser.WrapDriverError("close context", err)
	}
	return lastErr
}

type element struct {
	loc     playwright.Locator
	desc    string
	attempt time.Duration
}

func (e *element) Fill(ctx context.Context, value string) error {
	err := e.loc.Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(budget(ctx, e.attempt)),
	})
	return e.classify("fill", err)
}

func (e *element) Click(ctx context.Context) error {
	err := e.loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(budget(ctx, e.attempt)),
	})
	return e.classify("click", err)
}

func (e *element) Visible(ctx context.Context) (bool, error) {
	ok, err := e.loc.IsVisible()
	return ok, e.classify("visible", err)
}

func (e *element) Disabled(ctx context.Context) (bool, error) {
	ok, err := e.loc.IsDisabled(playwright.LocatorIsDisabledOptions{
		Timeout: playwright.Float(budget(ctx, e.attempt)),
	})
	return ok, e.classify("disabled", err)
}

func (e *element) Text(ctx context.Context) (string, error) {
	text, err := e.loc.TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(budget(ctx, e.attempt)),
	})
	return text, e.classify("text", err)
}

// classify maps Playwright's actionability timeouts onto ErrNotInteractable
// so the caller keeps waiting instead of giving up.
func (e *element) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s %s", browser.ErrNotInteractable, op, e.desc)
	}
	return browser.WrapDriverError(op+" "+e.desc, err)
}

// budget returns the per-call timeout in milliseconds, clipped to the
// context deadline.
func budget(ctx context.Context, max time.Duration) float64 {
	d := max
	if deadline, ok := ctx.Deadline(); ok {
		if rem := time.Until(deadline); rem < d {
			d = rem
		}
	}
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	return float64(d.Milliseconds())
}
