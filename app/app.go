package app

import (
	"fmt"
	"log/slog"

	"github.com/m3rciful/counterbot/core/buildinfo"
	"github.com/m3rciful/counterbot/core/counter"
	"github.com/m3rciful/counterbot/core/logger"
	coretelegram "github.com/m3rciful/counterbot/core/telegram"
	"github.com/m3rciful/counterbot/core/telegram/callbacks"
	"github.com/m3rciful/counterbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/counterbot/core/telegram/helpers"
	"github.com/m3rciful/counterbot/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

// App wires counter handlers into the Telegram runtime.
type App struct {
	cfg *Config
	reg *coretelegram.Registry
}

// New builds the registry for cfg. The config must already be normalized.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	a := &App{cfg: cfg, reg: coretelegram.NewRegistry()}

	a.reg.RegisterCommand("/start", commands.Command{
		Handler:     a.onStart,
		Description: "Start the bot",
	})
	a.reg.RegisterCommand("/help", commands.Command{
		Handler:     a.onHelp,
		Description: "How to create a counter",
	})
	a.reg.RegisterCommand("/version", commands.Command{
		Handler:     a.onVersion,
		Description: "Build information",
		Hidden:      true,
		AdminOnly:   true,
	})

	if err := a.reg.RegisterCallbackPattern("counter", counter.Pattern, a.onCounter); err != nil {
		return nil, fmt.Errorf("app: register counter callback: %w", err)
	}
	a.reg.SetCallbackNotFound(func(c tele.Context) error {
		// stale or foreign buttons: acknowledge without a toast
		return callbacks.Answer(c)
	})
	a.reg.SetTextFallback(a.onCreate)
	return a, nil
}

// Registry exposes the command and callback registry.
func (a *App) Registry() *coretelegram.Registry {
	return a.reg
}

// TelegramRunOptions assembles routes, middleware and the error reply for RunTelegram.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()

	routes := router.CommandRoutes(a.reg, router.CommandRouteOptions{AdminID: core.Telegram.AdminID})
	routes = append(routes, router.TextRoutes(a.reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(a.reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnError:     a.onError,
	}, nil
}

func (a *App) onError(err error, c tele.Context) {
	if err == nil {
		return
	}
	if c == nil {
		logger.Error(logger.Background(), "counter", "handler.error",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return
	}
	ctx := tghelpers.BuildContext(c)
	logger.Error(ctx, "counter", "handler.error",
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	if c.Chat() == nil {
		return
	}
	if sendErr := tghelpers.SendText(c, "⚠ "+a.cfg.Counter.ErrorText); sendErr != nil {
		logger.Warn(ctx, "counter", "error_reply.failed",
			slog.String("err", logger.SanitizeLimit(sendErr.Error(), 256)),
		)
	}
}

func versionText() string {
	return buildinfo.Summary()
}
