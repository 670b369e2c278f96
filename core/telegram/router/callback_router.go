package router

import (
	"time"

	tg "github.com/m3rciful/counterbot/core/telegram"
	"github.com/m3rciful/counterbot/core/telegram/callbacks"
	"github.com/m3rciful/counterbot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry.
// Keyed callbacks are looked up first, then raw data is matched against registered patterns.
// The query is answered with an empty response unless the handler answered it itself.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}
		defer func() {
			if !callbacks.Answered(c) {
				_ = callbacks.Answer(c)
			}
		}()

		key, payload := callbacks.Split(c.Callback())
		if key != "" {
			if cbHandler, ok := reg.GetCallback(key); ok && cbHandler != nil {
				name := "callback." + normalizeHandlerName(key)
				return handled(c, name, start, func() error {
					return cbHandler(c)
				}, slog.String("cb_key", key))
			}
		} else if match, ok := reg.MatchCallback(payload); ok {
			name := "callback." + normalizeHandlerName(match.Name)
			return handled(c, name, start, func() error {
				return match.Handler(c)
			}, slog.String("cb_key", match.Name))
		}

		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		if fallback == nil {
			skipped(c, "callback.unknown", start, slog.String("reason", "not_found"))
			return nil
		}
		return handled(c, "callback.unknown", start, func() error {
			return fallback(c)
		}, slog.String("reason", "not_found"))
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
