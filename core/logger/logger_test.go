package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	coreconfig "github.com/m3rciful/counterbot/core/config"
)

func TestComponentLoggersUsableBeforeInit(t *testing.T) {
	assert.NotNil(t, L)
	assert.NotNil(t, TG)
	assert.NotNil(t, Counter)
	assert.NotPanics(t, func() {
		Info(Background(), "counter", "test.event")
	})
}

func TestNewRotatingFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	f := newRotatingFile(path, 0, 0)
	assert.Equal(t, path, f.Filename)
	assert.Equal(t, defaultMaxSizeMB, f.MaxSize)
	assert.Equal(t, defaultMaxBackups, f.MaxBackups)

	f = newRotatingFile(path, 3, 2)
	assert.Equal(t, 3, f.MaxSize)
	assert.Equal(t, 2, f.MaxBackups)
}

func TestOpenSinksAddsRotatingFile(t *testing.T) {
	cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Dir:     t.TempDir(),
		BotFile: "bot.log",
	}}
	writers, closers := openSinks(cfg)
	assert.Len(t, writers, 2)
	assert.Len(t, closers, 1)
	for _, c := range closers {
		assert.NoError(t, c.Close())
	}

	writers, closers = openSinks(&coreconfig.Config{})
	assert.Len(t, writers, 1)
	assert.Empty(t, closers)
}

func TestSettingsFrom(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Logging.Level = "warning"
	s := settingsFrom(cfg)
	assert.Equal(t, "WARN", s.level.String())
	assert.Equal(t, "prod", s.profile)
	assert.Equal(t, defaultKeyOrder, s.order)
	assert.Equal(t, defaultSampleDen, s.sampleDen)

	cfg.Logging.Profile = "Dev"
	cfg.Logging.KeysOrder = "event, rid,,"
	cfg.Logging.DebugSample = "off"
	s = settingsFrom(cfg)
	assert.Equal(t, formatKV, s.format)
	assert.Equal(t, []string{"event", "rid"}, s.order)
	assert.Zero(t, s.sampleNum)
	assert.Zero(t, s.sampleDen)

	cfg.Logging.Format = "json"
	assert.Equal(t, formatJSON, settingsFrom(cfg).format)
	assert.Equal(t, formatJSON, settingsFrom(nil).format)
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	assert.Equal(t, []bool{true, false, false, true}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())

	num, den := parseRatioSpec("2/10")
	assert.Equal(t, 2, num)
	assert.Equal(t, 10, den)
	num, den = parseRatioSpec("20")
	assert.Equal(t, 1, num)
	assert.Equal(t, 20, den)
	num, den = parseRatioSpec("off")
	assert.Zero(t, num)
	assert.Zero(t, den)
}

func TestCompactRID(t *testing.T) {
	assert.Equal(t, "a.b.c", CompactRID(BuildRID(10, 11, 12)))
	assert.Equal(t, "not-a-rid", CompactRID("not-a-rid"))
	assert.Equal(t, "abc", SanitizeLimit("a\x00bcdef", 3))
	assert.Equal(t, "➕ (", SanitizeLimit("➕ (5)", 3))
}

func TestUpdateMetaAccumulates(t *testing.T) {
	ctx := WithRID(Background(), "1:2:3")
	ctx = WithUpdateMeta(ctx, 1, 3, 2)
	ctx = WithHandler(ctx, "fallback")
	ctx = WithHandler(ctx, "")

	m := MetaFrom(ctx)
	assert.Equal(t, UpdateMeta{RID: "1:2:3", UpdateID: 1, UserID: 3, ChatID: 2, Handler: "fallback"}, m)
	assert.Equal(t, "1:2:3", RIDFrom(ctx))
	assert.Equal(t, UpdateMeta{}, MetaFrom(nil))
}
