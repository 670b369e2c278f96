// Counterbot runs a Telegram bot that posts inline counters.
//
// Any non-command text becomes a counter message with buttons; the counter
// value and its settings travel inside the button callback data, so the bot
// keeps no storage of its own.
//
// See 'counterbot --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/m3rciful/counterbot/app"
	"github.com/m3rciful/counterbot/core/bootstrap"
	"github.com/m3rciful/counterbot/core/buildinfo"
	corecmd "github.com/m3rciful/counterbot/core/cmd"
)

const defaultConfigPath = "config.yaml"

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "counterbot",
	Short: "Telegram inline counter bot",
	Long: `Counterbot posts a counter with inline buttons for every text message it receives.

Send "Apple=99" to start a counter at 99, or any other text to start at zero.
The config file is taken from --config, then CONFIG_PATH, then ./config.yaml.`,
	Version:       buildinfo.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return corecmd.Run(runOptions())
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkConfigCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(buildinfo.Summary())
	},
}

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the configuration file and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := corecmd.ResolveConfigPath(runOptions())
		if err != nil {
			return err
		}
		cfg, err := app.LoadConfig(path)
		if err != nil {
			return err
		}
		core := cfg.CoreConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config: %s\n", path)
		fmt.Fprintf(out, "run_mode: %s\n", core.Telegram.RunMode)
		fmt.Fprintf(out, "admin_id set: %t\n", core.Telegram.AdminID != 0)
		fmt.Fprintf(out, "rate_limit.interval_ms: %d\n", core.RateLimit.IntervalMS)
		fmt.Fprintf(out, "sender.breaker_failures: %d\n", core.Sender.BreakerFailures)
		fmt.Fprintf(out, "counter.delete_source: %t\n", cfg.Counter.ShouldDeleteSource())
		return nil
	},
}

func runOptions() corecmd.Options {
	return corecmd.Options{
		ConfigPath:        configPath,
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: defaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := app.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := carrier.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", carrier)
			}
			if err := bootstrap.Run(bootstrap.Options{Config: cfg.CoreConfig()}); err != nil {
				return nil, err
			}
			return app.New(cfg)
		},
	}
}
