package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/counterbot/core/config"
	"github.com/m3rciful/counterbot/core/logger"
	tghelpers "github.com/m3rciful/counterbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/counterbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to a telebot endpoint (a command string or a tele.On* constant).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	// DispatcherOptions are used when Dispatcher is nil; zero means OptionsFrom(Config.Sender).
	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup   bool
	DisableHelperDispatcher bool

	// OnError receives errors returned by handlers. Nil logs them under the tg component.
	OnError func(err error, c tele.Context)

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot, wires routes and serves updates until ctx is done.
// Cancellation is a clean stop and returns nil.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		return errors.New("telegram: nil config provided")
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	started := time.Now()
	bot, err := newBot(cfg, opts.OnError)
	if err != nil {
		return err
	}
	logMode(ctx, bot.Poller, cfg, time.Since(started))

	if !opts.DisableWebhookCleanup && isLongPoll(cfg) {
		clearWebhook(bot)
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dopts := opts.DispatcherOptions
		if dopts == (tgsender.Options{}) {
			dopts = tgsender.OptionsFrom(cfg.Sender)
		}
		dispatcher = tgsender.NewDispatcher(dopts)
	}
	if !opts.DisableHelperDispatcher {
		tghelpers.SetDispatcher(dispatcher)
	}
	defer func() {
		dispatcher.Close()
		if !opts.DisableHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
	}()

	wire(bot, opts)
	rt := Runtime{Dispatcher: dispatcher, Registry: opts.Registry}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	runErr := serve(ctx, bot)
	if opts.OnStop != nil {
		if err := opts.OnStop(ctx, rt); err != nil {
			return err
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func newBot(cfg *coreconfig.Config, onError func(error, tele.Context)) (*tele.Bot, error) {
	if onError == nil {
		onError = logHandlerError
	}
	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(HTTPClientOptions{
			LongPollTimeout: time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second,
		}),
		OnError: onError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	return bot, nil
}

func wire(bot *tele.Bot, opts RunOptions) {
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	InitBotCommands(bot, opts.Registry)
}

// serve runs bot.Start until it returns or ctx is done.
func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		bot.Start()
		close(done)
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func isLongPoll(cfg *coreconfig.Config) bool {
	return strings.EqualFold(cfg.Telegram.RunMode, coreconfig.RunModeLongpoll)
}

func logMode(ctx context.Context, poller tele.Poller, cfg *coreconfig.Config, took time.Duration) {
	attrs := []slog.Attr{
		slog.String("event", "mode"),
		slog.Duration("duration", logger.RoundMS(took)),
	}
	if wh, ok := poller.(*tele.Webhook); ok {
		attrs = append(attrs,
			slog.String("mode", "webhook"),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
		)
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook mode", attrs...)
		return
	}
	timeout := cfg.Telegram.LongPollTimeoutSeconds
	if timeout <= 0 {
		timeout = int(defaultLongPollTimeout / time.Second)
	}
	attrs = append(attrs, slog.String("mode", "polling"), slog.Int("timeout_seconds", timeout))
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "polling mode", attrs...)
}

// clearWebhook removes a webhook left by a previous deployment; Telegram refuses
// getUpdates while one is set. Pending updates are kept.
func clearWebhook(bot *tele.Bot) {
	attrs := []slog.Attr{slog.String("event", "delete_webhook"), slog.String("mode", "polling")}
	if err := bot.RemoveWebhook(false); err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "failed to delete webhook", attrs...)
		return
	}
	logger.TG.LogAttrs(context.Background(), slog.LevelInfo, "webhook deleted", attrs...)
}

func logHandlerError(err error, c tele.Context) {
	if err == nil {
		return
	}
	ctx := logger.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "handler.error",
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
}
