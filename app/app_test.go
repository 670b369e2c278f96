package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/counterbot/core/counter"
)

func TestNewRegistersHandlers(t *testing.T) {
	a := testApp(t)
	reg := a.Registry()

	visible := reg.ListCommands(true)
	require.Len(t, visible, 2)
	assert.Equal(t, "/help", visible[0].Text)
	assert.Equal(t, "/start", visible[1].Text)

	_, cmd, ok := reg.LookupCommand("/version")
	require.True(t, ok)
	assert.True(t, cmd.AdminOnly)

	m, ok := reg.MatchCallback("#counter=7,settings=sr")
	require.True(t, ok)
	assert.Equal(t, "counter", m.Name)
	_, ok = reg.MatchCallback("counter=7")
	assert.False(t, ok)

	assert.NotNil(t, reg.TextFallback())
}

func TestTelegramRunOptions(t *testing.T) {
	a := testApp(t)
	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)

	assert.Same(t, a.cfg.CoreConfig(), opts.Config)
	assert.NotNil(t, opts.OnError)
	// three commands, one text route, one callback route
	require.Len(t, opts.Routes, 5)

	var hasText, hasCallback bool
	for _, r := range opts.Routes {
		switch r.Endpoint {
		case tele.OnText:
			hasText = true
		case tele.OnCallback:
			hasCallback = true
		}
	}
	assert.True(t, hasText)
	assert.True(t, hasCallback)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: "123:abc"
counter:
  delete_source: false
  error_text: "Oops"
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.CoreConfig().Telegram.Token)
	assert.False(t, cfg.Counter.ShouldDeleteSource())
	assert.Equal(t, "Oops", cfg.Counter.ErrorText)
	assert.Equal(t, counter.ReadOnlyFeedback, cfg.Counter.ReadOnlyText)
	assert.Contains(t, cfg.Counter.HelpText, "create a counter")
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram:\n  token: \"1:x\"\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Counter.ShouldDeleteSource())
	assert.Equal(t, defaultErrorText, cfg.Counter.ErrorText)
}
