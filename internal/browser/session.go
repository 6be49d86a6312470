package browser

import "context"

// Runtime hands out isolated browser sessions.
type Runtime interface {
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// Session is one isolated browsing context with a single page.
// A session is owned by exactly one scenario and is never shared.
type Session interface {
	ID() string
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	// Find resolves the locator once, without waiting. It returns
	// ErrElementNotFound when nothing matches right now.
	Find(ctx context.Context, loc Locator) (Element, error)
	Close() error
}

// Element is a resolved handle to a node on the page.
type Element interface {
	Fill(ctx context.Context, value string) error
	Click(ctx context.Context) error
	Visible(ctx context.Context) (bool, error)
	Disabled(ctx context.Context) (bool, error)
	Text(ctx context.Context) (string, error)
}
