package app

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/counterbot/core/config"
	"github.com/m3rciful/counterbot/core/counter"
)

const (
	defaultErrorText = "An error occurred. Please try again later."
	defaultHelpText  = `Enter any text to create a counter.
If you enter text with a "=" number, a counter with the specified value will be created. For example: "Apple=99".`
)

// CounterConfig holds bot-specific behaviour.
type CounterConfig struct {
	// DeleteSource removes the user's message once the counter is posted. Nil means true.
	DeleteSource *bool  `yaml:"delete_source" envconfig:"COUNTER_DELETE_SOURCE"`
	ErrorText    string `yaml:"error_text" envconfig:"COUNTER_ERROR_TEXT"`
	HelpText     string `yaml:"help_text"`
	ReadOnlyText string `yaml:"readonly_text"`
}

// Config is the full bot configuration: the shared core plus the counter section.
type Config struct {
	coreconfig.Config `yaml:",inline"`
	Counter           CounterConfig `yaml:"counter"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads the YAML file at path, applies env overrides and fills defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the core section and fills counter defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	cc := &c.Counter
	if cc.DeleteSource == nil {
		v := true
		cc.DeleteSource = &v
	}
	if strings.TrimSpace(cc.ErrorText) == "" {
		cc.ErrorText = defaultErrorText
	}
	if strings.TrimSpace(cc.HelpText) == "" {
		cc.HelpText = defaultHelpText
	}
	if strings.TrimSpace(cc.ReadOnlyText) == "" {
		cc.ReadOnlyText = counter.ReadOnlyFeedback
	}
	if len(cc.ReadOnlyText) > 200 {
		return fmt.Errorf("counter.readonly_text must be at most 200 bytes")
	}
	return nil
}

// ShouldDeleteSource reports whether the source message is removed after posting.
func (cc CounterConfig) ShouldDeleteSource() bool {
	return cc.DeleteSource == nil || *cc.DeleteSource
}
