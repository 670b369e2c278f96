package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/counterbot/core/config"
	coretelegram "github.com/m3rciful/counterbot/core/telegram"
)

type stubConfig struct{ cfg *coreconfig.Config }

func (s stubConfig) CoreConfig() *coreconfig.Config { return s.cfg }

type stubApp struct{ opts coretelegram.RunOptions }

func (a stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, nil }

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("COUNTER_CONFIG", "/etc/env.yaml")

	p, err := ResolveConfigPath(Options{ConfigPath: "flag.yaml", ConfigEnvVar: "COUNTER_CONFIG"})
	require.NoError(t, err)
	assert.Equal(t, "flag.yaml", p)

	p, err = ResolveConfigPath(Options{ConfigEnvVar: "COUNTER_CONFIG", DefaultConfigPath: "config.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "/etc/env.yaml", p)

	p, err = ResolveConfigPath(Options{ConfigEnvVar: "UNSET_COUNTER_CONFIG", DefaultConfigPath: "config.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", p)

	_, err = ResolveConfigPath(Options{ConfigEnvVar: "UNSET_COUNTER_CONFIG"})
	assert.Error(t, err)
}

func TestRunWrapsLifecycleHooks(t *testing.T) {
	var events []string
	err := Run(Options{
		ConfigPath: "config.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			assert.Equal(t, "config.yaml", path)
			return stubConfig{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) {
			return stubApp{opts: coretelegram.RunOptions{
				OnStart: func(context.Context, coretelegram.Runtime) error {
					events = append(events, "start")
					return nil
				},
			}}, nil
		},
		ShutdownLogger: func() error {
			events = append(events, "shutdown")
			return nil
		},
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			require.NoError(t, opts.OnStop(ctx, coretelegram.Runtime{}))
			events = append(events, "run")
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "run", "shutdown"}, events)
}

func TestRunPropagatesLoadError(t *testing.T) {
	err := Run(Options{
		ConfigPath: "x.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) { return nil, errors.New("bad yaml") },
		Bootstrap:  func(ConfigCarrier) (TelegramApp, error) { return nil, nil },
	})
	assert.ErrorContains(t, err, "bad yaml")
}
