package pwdriver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"formcheck/internal/browser"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// Runtime is a Playwright-backed browser runtime. It owns one browser
// process; every session gets its own browser context.
type Runtime struct {
	cfg     Config
	pw      *playwright.Playwright
	browser playwright.Browser

	mu     sync.Mutex
	closed bool
}

// NewRuntime starts the Playwright driver and launches the configured browser.
func NewRuntime(cfg Config) (*Runtime, error) {
	merged := cfg.withDefaults()
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	if merged.Install {
		slog.Info("installing playwright driver", "browser", merged.Browser)
		err := playwright.Install(&playwright.RunOptions{Browsers: []string{merged.Browser}})
		if err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	var bt playwright.BrowserType
	switch merged.Browser {
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		bt = pw.Chromium
	}

	b, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(merged.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch %s: %w", merged.Browser, err)
	}
	slog.Debug("browser launched", "browser", merged.Browser, "version", b.Version(), "headless", merged.Headless)

	return &Runtime{cfg: merged, pw: pw, browser: b}, nil
}

// NewSession opens a fresh browser context with a single page.
func (r *Runtime) NewSession(ctx context.Context) (browser.Session, error) {
	if r == nil {
		return nil, browser.ErrUnavailable
	}
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, browser.ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := r.browser.NewContext()
	if err != nil {
		return nil, browser.WrapDriverError("new context", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, browser.WrapDriverError("new page", err)
	}
	page.SetDefaultTimeout(float64(r.cfg.AttemptTimeout.Milliseconds()))

	return &Session{
		id:             uuid.NewString(),
		bctx:           bctx,
		page:           page,
		navTimeout:     r.cfg.NavigationTimeout,
		attemptTimeout: r.cfg.AttemptTimeout,
	}, nil
}

// Close shuts down the browser and the Playwright driver.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	var lastErr error
	if err := r.browser.Close(); err != nil {
		lastErr = browser.WrapDriverError("close browser", err)
	}
	if err := r.pw.Stop(); err != nil {
		lastErr = browser.WrapDriverError("stop playwright", err)
	}
	return lastErr
}
