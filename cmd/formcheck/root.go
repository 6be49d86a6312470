package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"formcheck/internal/browser"
	"formcheck/internal/browser/pwdriver"
	"formcheck/internal/config"
	"formcheck/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitFatal  = 2
)

var exit = os.Exit

// newRuntime starts the browser runtime. Tests swap it for an in-memory page.
var newRuntime = func(cfg pwdriver.Config) (browser.Runtime, error) {
	return pwdriver.NewRuntime(cfg)
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func fatal(err error) error {
	return &exitError{code: exitFatal, err: err}
}

var errScenariosFailed = errors.New("one or more scenarios failed")

// errReported marks an error that was already printed to stderr.
var errReported = errors.New("error already reported")

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Anything else comes from argument or flag parsing.
	return exitFatal
}

// newRootCmd builds the command tree. State lives in the returned commands
// and in viper, so tests can build a fresh tree per case.
func newRootCmd() *cobra.Command {
	var cfgFile string
	var closeLog func() error

	root := &cobra.Command{
		Use:   "formcheck",
		Short: "Declarative browser assertions for web forms",
		Long: `formcheck drives real browser sessions through named scenarios against a
running web application and reports pass/fail per scenario. Without scenario
files it runs the built-in loan calculator suite.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(cfgFile); err != nil {
				return fatal(err)
			}
			closeFn, err := telemetry.InitLogger(viper.GetBool(config.KeyVerbose), viper.GetString(config.KeyLogFile))
			if err != nil {
				return fatal(err)
			}
			closeLog = closeFn
			if err := config.ValidateConfig(); err != nil {
				return fatal(err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./formcheck.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	root.PersistentFlags().String("log-file", "", "Also append JSON logs to this file")
	root.PersistentFlags().String("base-url", config.DefaultBaseURL, "Application URL every scenario starts from")

	bindFlags(root.PersistentFlags(), map[string]string{
		"verbose":  config.KeyVerbose,
		"log-file": config.KeyLogFile,
		"base-url": config.KeyBaseURL,
	})

	root.AddCommand(newRunCmd(), newListCmd())
	return root
}

// bindFlags binds each named flag in fs to its viper key, so flags override
// environment and file values.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if f := fs.Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	code := exitCode(err)
	if err != nil && !errors.Is(err, errScenariosFailed) && !errors.Is(err, errReported) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return code
}

// Execute runs the CLI against the process arguments and exits.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(exitFatal)
		}
	}()

	exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
