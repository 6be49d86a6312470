// Package config loads formcheck settings from flags, environment, .env and
// an optional YAML file through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"formcheck/internal/polling"
	"formcheck/internal/scenario"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FORMCHECK_WAIT_TIMEOUT.
const EnvPrefix = "FORMCHECK"

// Configuration keys.
const (
	KeyBaseURL           = "base_url"
	KeyWaitTimeout       = "wait.timeout"
	KeyWaitInterval      = "wait.interval"
	KeyNavigationTimeout = "navigation_timeout"
	KeyConcurrency       = "concurrency"
	KeyBrowser           = "browser"
	KeyHeadless          = "headless"
	KeyFormat            = "format"
	KeyMetricsAddr       = "metrics_addr"
	KeyVerbose           = "verbose"
	KeyLogFile           = "log_file"
	KeySlackWebhook      = "notifications.slack.webhook_url"
	KeyDiscordWebhook    = "notifications.discord.webhook_url"
	KeyNotifyOnSuccess   = "notifications.on_success"
)

// Defaults.
const (
	DefaultBaseURL           = scenario.DefaultBaseURL
	DefaultWaitTimeout       = polling.DefaultTimeout
	DefaultWaitInterval      = polling.DefaultInterval
	DefaultNavigationTimeout = 30 * time.Second
	DefaultBrowser           = "chromium"
	DefaultFormat            = "text"
)

// SetDefaults registers every default with viper.
func SetDefaults() {
	viper.SetDefault(KeyBaseURL, DefaultBaseURL)
	viper.SetDefault(KeyWaitTimeout, DefaultWaitTimeout)
	viper.SetDefault(KeyWaitInterval, DefaultWaitInterval)
	viper.SetDefault(KeyNavigationTimeout, DefaultNavigationTimeout)
	viper.SetDefault(KeyConcurrency, 1)
	viper.SetDefault(KeyBrowser, DefaultBrowser)
	viper.SetDefault(KeyHeadless, true)
	viper.SetDefault(KeyFormat, DefaultFormat)
	viper.SetDefault(KeyMetricsAddr, "")
	viper.SetDefault(KeyVerbose, false)
	viper.SetDefault(KeyLogFile, "")
	viper.SetDefault(KeySlackWebhook, "")
	viper.SetDefault(KeyDiscordWebhook, "")
	viper.SetDefault(KeyNotifyOnSuccess, false)
}

// Load initializes the configuration from .env, an optional config file and
// environment variables. An explicit cfgFile must exist; the implicit
// ./formcheck.yaml is optional.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("formcheck")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}
