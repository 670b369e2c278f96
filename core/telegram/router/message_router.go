package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/counterbot/core/telegram"
	"github.com/m3rciful/counterbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	// UnknownCommand handles "/something" that is not registered. Nil ignores it.
	UnknownCommand tele.HandlerFunc
	UnknownText    tele.HandlerFunc
}

// TextRoutes builds the OnText handler: command aliases first, then the registry
// text fallback for plain text. Slash-prefixed text never reaches the fallback.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := strings.TrimSpace(c.Text())

		if strings.HasPrefix(text, "/") {
			name := strings.SplitN(text, " ", 2)[0]
			// strip the @botname suffix used in groups
			name, _, _ = strings.Cut(name, "@")
			if reg != nil {
				if key, cmd, ok := reg.LookupCommand(name); ok && cmd.Handler != nil {
					return handled(c, normalizeHandlerName(key), start, func() error {
						return cmd.Handler(c)
					})
				}
			}
			if opts.UnknownCommand != nil {
				return handled(c, "unknown_command", start, func() error {
					return opts.UnknownCommand(c)
				})
			}
			skipped(c, "unknown_command", start)
			return nil
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handled(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handled(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		skipped(c, "unknown_text", start)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}
