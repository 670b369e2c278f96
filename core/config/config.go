package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig is the bot identity and how updates are received.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file"`
	// MaxSizeMB rotates the bot file once it grows past this size; 0 -> 10.
	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// SenderConfig tunes the asynchronous outbound dispatcher.
// Zero values fall back to dispatcher defaults; BreakerFailures == 0 disables the breaker.
type SenderConfig struct {
	QueueSize        int `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	Workers          int `yaml:"workers" envconfig:"SENDER_WORKERS"`
	MaxRetries       int `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
	RetryBackoffMS   int `yaml:"retry_backoff_ms"`
	MaxDurationMS    int `yaml:"max_duration_ms"`
	BreakerFailures  int `yaml:"breaker_failures" envconfig:"SENDER_BREAKER_FAILURES"`
	BreakerTimeoutMS int `yaml:"breaker_timeout_ms"`
}

const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
// - "inline_query": inline query updates
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	Burst          int      `yaml:"burst" envconfig:"RATE_LIMIT_BURST"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Sender    SenderConfig    `yaml:"sender"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode fills dst from a YAML file and then overlays environment variables.
// Bots embed Config inline in their own struct and decode it with this helper.
func Decode(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("failed to process env: %w", err)
	}
	return nil
}

// Normalize validates cfg section by section and fills defaults in place.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	for _, step := range []func() error{
		func() error { return cfg.Telegram.normalize(cfg.Webhook) },
		cfg.RateLimit.normalize,
		cfg.Logging.validate,
		cfg.Sender.validate,
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (t *TelegramConfig) normalize(wh WebhookConfig) error {
	if strings.TrimSpace(t.Token) == "" {
		return errors.New("telegram token is required")
	}
	mode := strings.ToLower(strings.TrimSpace(t.RunMode))
	switch mode {
	case "", "polling":
		mode = RunModeLongpoll
	}
	switch mode {
	case RunModeWebhook:
		const suffix = "when telegram.run_mode is 'webhook'"
		switch {
		case strings.TrimSpace(wh.URL) == "":
			return fmt.Errorf("webhook.url is required %s", suffix)
		case strings.TrimSpace(wh.Listen) == "":
			return fmt.Errorf("webhook.listen is required %s", suffix)
		case wh.Port <= 0:
			return fmt.Errorf("webhook.port must be > 0 %s", suffix)
		}
	case RunModeLongpoll:
		if t.LongPollTimeoutSeconds < 0 {
			return errors.New("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", t.RunMode)
	}
	t.RunMode = mode
	return nil
}

func (r *RateLimitConfig) normalize() error {
	for i, v := range r.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		switch key {
		case "", UpdateCallback, UpdateMessage, UpdateInlineQuery:
			r.ExcludeUpdates[i] = key
		default:
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query", v)
		}
	}
	if r.IntervalMS < 0 || r.Burst < 0 {
		return errors.New("rate_limit.interval_ms and rate_limit.burst must be >= 0")
	}
	return nil
}

func (l LoggingConfig) validate() error {
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 {
		return errors.New("logging.max_size_mb and logging.max_backups must be >= 0")
	}
	return nil
}

func (s SenderConfig) validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"queue_size", s.QueueSize},
		{"workers", s.Workers},
		{"max_retries", s.MaxRetries},
		{"retry_backoff_ms", s.RetryBackoffMS},
		{"max_duration_ms", s.MaxDurationMS},
		{"breaker_failures", s.BreakerFailures},
		{"breaker_timeout_ms", s.BreakerTimeoutMS},
	} {
		if f.v < 0 {
			return fmt.Errorf("sender.%s must be >= 0", f.name)
		}
	}
	return nil
}
