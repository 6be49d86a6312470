package pwdriver

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config controls how the Playwright runtime launches its browser.
type Config struct {
	Browser           string
	Headless          bool
	NavigationTimeout time.Duration
	// AttemptTimeout caps a single element operation. Waiting across
	// attempts is the caller's job.
	AttemptTimeout time.Duration
	Install        bool
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Browser:           "chromium",
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
		AttemptTimeout:    time.Second,
	}
}

func (c Config) withDefaults() Config {
	merged := DefaultConfig()
	merged.Headless = c.Headless
	merged.Install = c.Install
	if strings.TrimSpace(c.Browser) != "" {
		merged.Browser = strings.ToLower(strings.TrimSpace(c.Browser))
	}
	if c.NavigationTimeout != 0 {
		merged.NavigationTimeout = c.NavigationTimeout
	}
	if c.AttemptTimeout != 0 {
		merged.AttemptTimeout = c.AttemptTimeout
	}
	return merged
}

// Validate checks whether the config is usable.
func (c Config) Validate() error {
	switch c.Browser {
	case "chromium", "firefox", "webkit":
	default:
		return fmt.Errorf("unsupported browser %q", c.Browser)
	}
	if c.NavigationTimeout <= 0 {
		return errors.New("navigation_timeout must be positive")
	}
	if c.AttemptTimeout <= 0 {
		return errors.New("attempt_timeout must be positive")
	}
	return nil
}
