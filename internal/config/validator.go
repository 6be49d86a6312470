package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Browsers lists the supported browser engines.
var Browsers = []string{"chromium", "firefox", "webkit"}

// Formats lists the supported report formats.
var Formats = []string{"text", "json", "markdown"}

// ValidateConfig validates configuration values and returns an error listing
// every problem found. Call it after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	durations := []string{KeyWaitTimeout, KeyWaitInterval, KeyNavigationTimeout}
	values := make(map[string]time.Duration, len(durations))
	for _, key := range durations {
		d, err := duration(key)
		if err != nil {
			errors = append(errors, err.Error())
			continue
		}
		values[key] = d
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %v", key, d))
		}
	}
	if timeout, interval := values[KeyWaitTimeout], values[KeyWaitInterval]; timeout > 0 && interval > 0 && interval >= timeout {
		errors = append(errors, fmt.Sprintf("%s (%v) must be shorter than %s (%v)", KeyWaitInterval, interval, KeyWaitTimeout, timeout))
	}

	if c := viper.GetInt(KeyConcurrency); c < 1 {
		errors = append(errors, fmt.Sprintf("%s must be at least 1, got: %d", KeyConcurrency, c))
	}

	if b := viper.GetString(KeyBrowser); !slices.Contains(Browsers, b) {
		errors = append(errors, fmt.Sprintf("%s must be one of %s, got: %q", KeyBrowser, strings.Join(Browsers, ", "), b))
	}

	if f := viper.GetString(KeyFormat); !slices.Contains(Formats, f) {
		errors = append(errors, fmt.Sprintf("%s must be one of %s, got: %q", KeyFormat, strings.Join(Formats, ", "), f))
	}

	if msg := checkURL(KeyBaseURL, viper.GetString(KeyBaseURL), true); msg != "" {
		errors = append(errors, msg)
	}
	for _, key := range []string{KeySlackWebhook, KeyDiscordWebhook} {
		if msg := checkURL(key, viper.GetString(key), false); msg != "" {
			errors = append(errors, msg)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}
	return nil
}

// duration reads key as a Go duration string or a time.Duration value.
func duration(key string) (time.Duration, error) {
	raw := viper.Get(key)
	switch v := raw.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a duration such as 5s, got: %q", key, v)
		}
		return d, nil
	case nil:
		return 0, fmt.Errorf("%s is not set", key)
	default:
		return viper.GetDuration(key), nil
	}
}

func checkURL(key, raw string, required bool) string {
	if raw == "" {
		if required {
			return fmt.Sprintf("%s is required", key)
		}
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("%s must be an absolute http(s) URL, got: %q", key, raw)
	}
	return ""
}
