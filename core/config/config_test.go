package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsToLongpoll(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
rate_limit:
  interval_ms: 500
  exclude_updates: [" Callback "]
sender:
  workers: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, []string{UpdateCallback}, cfg.RateLimit.ExcludeUpdates)
	assert.Equal(t, 2, cfg.Sender.Workers)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("BOT_TOKEN", "999:env")
	t.Setenv("SENDER_BREAKER_FAILURES", "7")
	path := writeConfig(t, `
telegram:
  token: "123:file"
  run_mode: polling
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "999:env", cfg.Telegram.Token)
	assert.Equal(t, 7, cfg.Sender.BreakerFailures)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no token", Config{}, "telegram token is required"},
		{"bad mode", Config{Telegram: TelegramConfig{Token: "t", RunMode: "push"}}, "invalid telegram.run_mode"},
		{"webhook without url", Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}}, "webhook.url is required"},
		{"webhook without port", Config{
			Telegram: TelegramConfig{Token: "t", RunMode: "webhook"},
			Webhook:  WebhookConfig{URL: "https://example.org/hook", Listen: "0.0.0.0"},
		}, "webhook.port must be > 0"},
		{"bad exclude", Config{
			Telegram:  TelegramConfig{Token: "t"},
			RateLimit: RateLimitConfig{ExcludeUpdates: []string{"photo"}},
		}, "invalid rate_limit.exclude_updates"},
		{"negative workers", Config{
			Telegram: TelegramConfig{Token: "t"},
			Sender:   SenderConfig{Workers: -1},
		}, "sender.workers must be >= 0"},
		{"negative log size", Config{
			Telegram: TelegramConfig{Token: "t"},
			Logging:  LoggingConfig{MaxSizeMB: -1},
		}, "logging.max_size_mb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := Normalize(&cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	require.Error(t, Normalize(nil))
}

func TestDecodeIntoEmbeddingStruct(t *testing.T) {
	type appConfig struct {
		Config `yaml:",inline"`
		Extra  struct {
			Name string `yaml:"name"`
		} `yaml:"extra"`
	}
	path := writeConfig(t, `
telegram:
  token: "1:x"
extra:
  name: counter
`)
	var cfg appConfig
	require.NoError(t, Decode(path, &cfg))
	assert.Equal(t, "1:x", cfg.Telegram.Token)
	assert.Equal(t, "counter", cfg.Extra.Name)
}
