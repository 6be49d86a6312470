package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"formcheck/internal/polling"
	"formcheck/internal/scenario"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Run("Defaults", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())

		require.NoError(t, Load(""))

		s := Current()
		assert.Equal(t, scenario.DefaultBaseURL, s.BaseURL)
		assert.Equal(t, polling.DefaultPolicy(), polling.Policy{Timeout: s.WaitTimeout, Interval: s.WaitInterval})
		assert.Equal(t, 5*time.Second, s.WaitTimeout)
		assert.Equal(t, 100*time.Millisecond, s.WaitInterval)
		assert.Equal(t, 30*time.Second, s.NavigationTimeout)
		assert.Equal(t, 1, s.Concurrency)
		assert.Equal(t, "chromium", s.Browser)
		assert.True(t, s.Headless)
		assert.Equal(t, "text", s.Format)
		assert.False(t, s.NotifyOnSuccess)
	})

	t.Run("Env Overrides", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())
		t.Setenv("FORMCHECK_BASE_URL", "http://staging.test/")
		t.Setenv("FORMCHECK_WAIT_TIMEOUT", "2s")
		t.Setenv("FORMCHECK_CONCURRENCY", "4")

		require.NoError(t, Load(""))

		s := Current()
		assert.Equal(t, "http://staging.test/", s.BaseURL)
		assert.Equal(t, 2*time.Second, s.WaitTimeout)
		assert.Equal(t, 4, s.Concurrency)
	})

	t.Run("Explicit File", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		t.Chdir(dir)
		cfg := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("browser: firefox\nwait:\n  interval: 250ms\nnotifications:\n  on_success: true\n"), 0o644))

		require.NoError(t, Load(cfg))

		s := Current()
		assert.Equal(t, "firefox", s.Browser)
		assert.Equal(t, 250*time.Millisecond, s.WaitInterval)
		assert.Equal(t, 5*time.Second, s.WaitTimeout)
		assert.True(t, s.NotifyOnSuccess)
	})

	t.Run("Missing Explicit File", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())
		assert.Error(t, Load("does-not-exist.yaml"))
	})

	t.Run("Dotenv", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FORMCHECK_FORMAT=json\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("FORMCHECK_FORMAT") })

		require.NoError(t, Load(""))
		assert.Equal(t, "json", Current().Format)
	})
}
