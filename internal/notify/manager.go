// Package notify posts run summaries to chat webhooks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"formcheck/internal/scenario"
)

// Config selects the destinations a Manager posts to.
type Config struct {
	SlackWebhookURL   string
	DiscordWebhookURL string
	// OnSuccess also posts when every scenario passed.
	OnSuccess bool
}

// Manager fans a run summary out to every configured notifier.
type Manager struct {
	notifiers []Notifier
	onSuccess bool
	logger    *slog.Logger
}

// NewManager builds a Manager from cfg. Destinations without a webhook URL
// are skipped.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{onSuccess: cfg.OnSuccess, logger: logger}
	if cfg.SlackWebhookURL != "" {
		m.notifiers = append(m.notifiers, NewSlackNotifier(cfg.SlackWebhookURL))
	}
	if cfg.DiscordWebhookURL != "" {
		m.notifiers = append(m.notifiers, NewDiscordNotifier(cfg.DiscordWebhookURL))
	}
	return m
}

// Add registers an extra notifier.
func (m *Manager) Add(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Enabled reports whether any destination is configured.
func (m *Manager) Enabled() bool {
	return len(m.notifiers) > 0
}

// RunFinished posts a summary of results. Passing runs are only posted when
// OnSuccess is set. Every notifier is tried; their errors are joined.
func (m *Manager) RunFinished(ctx context.Context, baseURL string, results []scenario.Result) error {
	if !m.Enabled() {
		return nil
	}
	summary := scenario.Summarize(results)
	if summary.Failed == 0 && !m.onSuccess {
		return nil
	}

	msg := Message(baseURL, results)
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			m.logger.Warn("notification failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Message formats results as a short chat message.
func Message(baseURL string, results []scenario.Result) string {
	s := scenario.Summarize(results)

	var b strings.Builder
	status := "PASSED"
	if s.Failed > 0 {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "formcheck %s: %d of %d scenarios passed against %s", status, s.Passed, s.Total, baseURL)
	for _, r := range results {
		if r.Passed() {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %s", r.Scenario, r.Reason())
	}
	return b.String()
}
