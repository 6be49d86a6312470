package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"formcheck/internal/browser"
	"formcheck/internal/browser/pwdriver"
	"formcheck/internal/config"
	"formcheck/internal/metrics"
	"formcheck/internal/notify"
	"formcheck/internal/polling"
	"formcheck/internal/report"
	"formcheck/internal/runner"
	"formcheck/internal/scenario"
	"formcheck/internal/watch"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type runFlags struct {
	properties bool
	only       []string
	watch      bool
	install    bool
	headed     bool
	noColor    bool
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [scenario files...]",
		Short: "Run scenarios against the application",
		Long: `Run the built-in loan calculator suite, or the scenarios in the given YAML
files, each in a fresh browser session. Exits 0 when every scenario passes,
1 when any fails and 2 when the application cannot be reached or the
configuration is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("headed") {
				viper.Set(config.KeyHeadless, !f.headed)
			}
			return runScenarios(cmd, args, f)
		},
	}

	cmd.Flags().String("format", config.DefaultFormat, "Report format: text, json or markdown")
	cmd.Flags().Int("concurrency", 1, "Scenarios to run in parallel")
	cmd.Flags().Duration("timeout", config.DefaultWaitTimeout, "Bounded wait for each action and assertion")
	cmd.Flags().Duration("interval", config.DefaultWaitInterval, "Polling interval inside the bounded wait")
	cmd.Flags().String("browser", config.DefaultBrowser, "Browser engine: chromium, firefox or webkit")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&f.headed, "headed", false, "Show the browser window")
	cmd.Flags().BoolVar(&f.properties, "properties", false, "Also run the generated property scenarios")
	cmd.Flags().StringSliceVar(&f.only, "only", nil, "Run only scenarios whose name contains one of these")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Re-run whenever a scenario file changes")
	cmd.Flags().BoolVar(&f.install, "install", false, "Install the Playwright driver and browser first")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")

	bindFlags(cmd.Flags(), map[string]string{
		"format":       config.KeyFormat,
		"concurrency":  config.KeyConcurrency,
		"timeout":      config.KeyWaitTimeout,
		"interval":     config.KeyWaitInterval,
		"browser":      config.KeyBrowser,
		"metrics-addr": config.KeyMetricsAddr,
	})

	return cmd
}

// loadScenarios returns the scenarios from files, or the built-in suite when
// none are given, narrowed by only.
func loadScenarios(files []string, properties bool, only []string) ([]scenario.Scenario, error) {
	var scenarios []scenario.Scenario
	if len(files) > 0 {
		loaded, err := scenario.LoadFiles(files)
		if err != nil {
			return nil, err
		}
		scenarios = loaded
	} else {
		scenarios = scenario.LoanCalculator()
	}
	if properties {
		scenarios = append(scenarios, scenario.LoanCalculatorProperties()...)
	}
	if err := scenario.ValidateAll(scenarios); err != nil {
		return nil, err
	}

	scenarios = scenario.Filter(scenarios, only)
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios match %v", only)
	}
	return scenarios, nil
}

func runScenarios(cmd *cobra.Command, args []string, f runFlags) error {
	s := config.Current()

	format, err := report.ParseFormat(s.Format)
	if err != nil {
		return fatal(err)
	}
	if f.watch && len(args) == 0 {
		return fatal(errors.New("--watch needs at least one scenario file"))
	}
	scenarios, err := loadScenarios(args, f.properties, f.only)
	if err != nil {
		return fatal(err)
	}
	if f.noColor {
		report.DisableColor()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics(prometheus.NewRegistry())
	if s.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, s.MetricsAddr); err != nil {
				slog.Error("metrics server failed", "addr", s.MetricsAddr, "error", err)
			}
		}()
	}

	rt, err := newRuntime(pwdriver.Config{
		Browser:           s.Browser,
		Headless:          s.Headless,
		NavigationTimeout: s.NavigationTimeout,
		Install:           f.install,
	})
	if err != nil {
		return fatal(fmt.Errorf("start browser: %w", err))
	}
	sessions := browser.NewManager(rt)
	defer func() {
		if err := sessions.Close(); err != nil {
			slog.Warn("closing browser failed", "error", err)
		}
	}()

	r := runner.New(sessions, runner.Options{
		BaseURL:     s.BaseURL,
		Wait:        polling.Policy{Timeout: s.WaitTimeout, Interval: s.WaitInterval},
		Concurrency: s.Concurrency,
		Metrics:     m,
	})
	notifier := notify.NewManager(notify.Config{
		SlackWebhookURL:   s.SlackWebhookURL,
		DiscordWebhookURL: s.DiscordWebhookURL,
		OnSuccess:         s.NotifyOnSuccess,
	}, slog.Default())

	sess := &runSession{
		out:      cmd.OutOrStdout(),
		runner:   r,
		notifier: notifier,
		baseURL:  s.BaseURL,
		format:   format,
		color:    !f.noColor,
	}

	if !f.watch {
		return sess.once(ctx, scenarios)
	}

	// The exit code of a watch session is that of its last run.
	var last error
	w := watch.New(slog.Default())
	err = w.Run(ctx, args, func(ctx context.Context) {
		current, err := loadScenarios(args, f.properties, f.only)
		if err != nil {
			slog.Error("reloading scenarios failed", "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			last = fatal(err)
			return
		}
		last = sess.once(ctx, current)
		if last != nil && !errors.Is(last, errScenariosFailed) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", last)
		}
		if ctx.Err() == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes...")
		}
	})
	if err != nil {
		return fatal(err)
	}
	if last != nil && !errors.Is(last, errScenariosFailed) {
		return &exitError{code: exitCode(last), err: errReported}
	}
	return last
}

// runSession holds what one or more runs against the same runtime share.
type runSession struct {
	out      io.Writer
	runner   *runner.Runner
	notifier *notify.Manager
	baseURL  string
	format   report.Format
	color    bool
}

// once runs scenarios, writes the report and posts notifications.
func (rs *runSession) once(ctx context.Context, scenarios []scenario.Scenario) error {
	results, err := rs.runner.Run(ctx, scenarios)
	if runner.IsNavigationError(err) {
		return fatal(err)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fatal(err)
	}

	if werr := report.Write(rs.out, rs.format, report.NewRun(rs.baseURL, results), rs.color); werr != nil {
		return fatal(werr)
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if nerr := rs.notifier.RunFinished(notifyCtx, rs.baseURL, results); nerr != nil {
		slog.Warn("sending notifications failed", "error", nerr)
	}

	if err != nil {
		return &exitError{code: exitFailed, err: fmt.Errorf("run interrupted: %w", err)}
	}
	if scenario.Summarize(results).Failed > 0 {
		return &exitError{code: exitFailed, err: errScenariosFailed}
	}
	return nil
}
