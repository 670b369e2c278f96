package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/counterbot/core/buildinfo"
	coreconfig "github.com/m3rciful/counterbot/core/config"
)

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	closed   bool

	logWriter  *asyncWriter
	logClosers []io.Closer

	levelVar      slog.LevelVar
	debugSampler  = newRatioSampler(defaultSampleNum, defaultSampleDen)
	traceOverride bool

	// L is the root logger; component loggers below derive from it.
	L *slog.Logger

	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// Sender logs outbound dispatcher activity.
	Sender *slog.Logger
	// Counter logs counter widget transitions.
	Counter *slog.Logger
)

// Until InitLogger runs, everything goes through slog's default logger.
func init() {
	L = slog.Default()
	wireComponents()
}

// InitLogger installs the structured handler as the slog default. Later calls are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		s := settingsFrom(cfg)
		levelVar.Set(s.level)
		debugSampler.Set(s.sampleNum, s.sampleDen)
		traceOverride = s.trace

		var sinks []io.Writer
		sinks, logClosers = openSinks(cfg)
		logWriter = newAsyncWriter(sinks, 64*1024)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   s.format,
			keyOrder: s.order,
		}))
		slog.SetDefault(L)
		wireComponents()

		attrs := []slog.Attr{
			slog.String("component", "app"),
			slog.String("event", "startup"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", s.profile),
		}
		if buildinfo.Version != "" {
			attrs = append(attrs, slog.String("build_version", buildinfo.Version))
		}
		if cfg != nil {
			attrs = append(attrs, slog.String("mode", cfg.Telegram.RunMode))
		}
		L.LogAttrs(context.Background(), slog.LevelInfo, "startup", attrs...)
	})
	return nil
}

func wireComponents() {
	TG = L.With("component", "tg")
	TWire = L.With("component", "tg.wire")
	Sender = L.With("component", "tg.sender")
	Counter = L.With("component", "counter")
}

// Shutdown flushes buffered output and closes file sinks. Only the first call does work.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if logWriter != nil {
		errs = append(errs, logWriter.Flush(), logWriter.Close())
	}
	for _, c := range logClosers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Component returns L scoped to the named component.
func Component(name string) *slog.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return L
	}
	return L.With("component", name)
}

// LogEvent logs attrs under event, falling back to the context logger when logg is nil.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(orBackground(ctx), level, "", attrs...)
}

// Event logs an event for component at level.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether this high-volume debug event should be logged.
// TRACE or LOG_TRACE in the environment disables sampling.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}
