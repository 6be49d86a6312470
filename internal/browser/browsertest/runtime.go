package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"formcheck/internal/browser"
)

// Runtime hands out sessions whose pages come from a factory. Every
// navigation builds a fresh page, so sessions never share state.
type Runtime struct {
	NewPage func() *Page
	// Unreachable makes every navigation fail.
	Unreachable bool
	// UnreachableURLs fails navigation to URLs containing any of these.
	UnreachableURLs []string

	mu      sync.Mutex
	opened  int
	live    int
	closed  bool
	visited []string
}

// NewRuntime creates a runtime serving pages built by newPage.
func NewRuntime(newPage func() *Page) *Runtime {
	return &Runtime{NewPage: newPage}
}

func (r *Runtime) NewSession(ctx context.Context) (browser.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, browser.ErrUnavailable
	}
	r.opened++
	r.live++
	return &Session{id: fmt.Sprintf("fake-%d", r.opened), rt: r}, nil
}

func (r *Runtime) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Opened returns how many sessions were ever created.
func (r *Runtime) Opened() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opened
}

// Live returns how many sessions are still open.
func (r *Runtime) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Visited returns every URL navigated to, across sessions.
func (r *Runtime) Visited() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.visited...)
}

func (r *Runtime) reachable(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visited = append(r.visited, url)
	if r.Unreachable {
		return false
	}
	for _, u := range r.UnreachableURLs {
		if strings.Contains(url, u) {
			return false
		}
	}
	return true
}

// Session is a fake browsing context holding at most one page.
type Session struct {
	id     string
	rt     *Runtime
	page   *Page
	closed bool
}

func (s *Session) ID() string {
	return s.id
}

// Page exposes the current page for test inspection.
func (s *Session) Page() *Page {
	return s.page
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.closed {
		return browser.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.rt.reachable(url) {
		return fmt.Errorf("%w: %s: connection refused", browser.ErrNavigationFailed, url)
	}
	s.page = s.rt.NewPage()
	s.page.URL = url
	s.page.changed()
	return nil
}

func (s *Session) Title(ctx context.Context) (string, error) {
	if s.closed {
		return "", browser.ErrSessionClosed
	}
	if s.page == nil {
		return "", nil
	}
	return s.page.Title, nil
}

func (s *Session) Find(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	if s.closed {
		return nil, browser.ErrSessionClosed
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if s.page == nil {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	n := s.page.Lookup(loc)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	return &element{node: n, page: s.page, sess: s}, nil
}

func (s *Session) Close() error {
	if s.closed {
		return browser.ErrSessionClosed
	}
	s.closed = true
	s.rt.mu.Lock()
	s.rt.live--
	s.rt.mu.Unlock()
	return nil
}

type element struct {
	node *Node
	page *Page
	sess *Session
}

func (e *element) usable() error {
	if e.sess.closed {
		return browser.ErrSessionClosed
	}
	if !e.node.Attached || e.node.Hidden || e.node.RevealAfter > 0 || e.node.Disabled {
		return browser.ErrNotInteractable
	}
	return nil
}

func (e *element) Fill(ctx context.Context, value string) error {
	if err := e.usable(); err != nil {
		return err
	}
	e.node.Value = value
	e.page.changed()
	return nil
}

func (e *element) Click(ctx context.Context) error {
	if err := e.usable(); err != nil {
		return err
	}
	if e.node.OnClick != nil {
		e.node.OnClick(e.page, e.node)
	}
	e.page.changed()
	return nil
}

func (e *element) Visible(ctx context.Context) (bool, error) {
	if e.sess.closed {
		return false, browser.ErrSessionClosed
	}
	if !e.node.Attached || e.node.Hidden {
		return false, nil
	}
	if e.node.RevealAfter > 0 {
		e.node.RevealAfter--
		return false, nil
	}
	return true, nil
}

func (e *element) Disabled(ctx context.Context) (bool, error) {
	if e.sess.closed {
		return false, browser.ErrSessionClosed
	}
	return e.node.Disabled, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	if e.sess.closed {
		return "", browser.ErrSessionClosed
	}
	return e.node.Text, nil
}
