package bootstrap

import (
	"fmt"

	coreconfig "github.com/m3rciful/counterbot/core/config"
	"github.com/m3rciful/counterbot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	// Checks run after the logger is up; the first failure aborts startup.
	Checks []func(*coreconfig.Config) error
}

// Run initializes the logger and runs startup checks.
func Run(opts Options) error {
	if opts.Config == nil {
		return fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	for i, check := range opts.Checks {
		if check == nil {
			continue
		}
		if err := check(opts.Config); err != nil {
			return fmt.Errorf("bootstrap: check %d failed: %w", i, err)
		}
	}
	return nil
}
