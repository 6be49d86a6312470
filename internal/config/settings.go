package config

import (
	"time"

	"github.com/spf13/viper"
)

// Settings is a typed snapshot of the loaded configuration.
type Settings struct {
	BaseURL           string
	WaitTimeout       time.Duration
	WaitInterval      time.Duration
	NavigationTimeout time.Duration
	Concurrency       int
	Browser           string
	Headless          bool
	Format            string
	MetricsAddr       string
	Verbose           bool
	LogFile           string
	SlackWebhookURL   string
	DiscordWebhookURL string
	NotifyOnSuccess   bool
}

// Current reads Settings from viper.
func Current() Settings {
	return Settings{
		BaseURL:           viper.GetString(KeyBaseURL),
		WaitTimeout:       viper.GetDuration(KeyWaitTimeout),
		WaitInterval:      viper.GetDuration(KeyWaitInterval),
		NavigationTimeout: viper.GetDuration(KeyNavigationTimeout),
		Concurrency:       viper.GetInt(KeyConcurrency),
		Browser:           viper.GetString(KeyBrowser),
		Headless:          viper.GetBool(KeyHeadless),
		Format:            viper.GetString(KeyFormat),
		MetricsAddr:       viper.GetString(KeyMetricsAddr),
		Verbose:           viper.GetBool(KeyVerbose),
		LogFile:           viper.GetString(KeyLogFile),
		SlackWebhookURL:   viper.GetString(KeySlackWebhook),
		DiscordWebhookURL: viper.GetString(KeyDiscordWebhook),
		NotifyOnSuccess:   viper.GetBool(KeyNotifyOnSuccess),
	}
}
