package middleware

import (
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/m3rciful/counterbot/core/logger"
	"github.com/m3rciful/counterbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/counterbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers update IDs whose receipt was already logged; the logger
// may run both globally and per route.
var seenUpdates = expirable.NewLRU[int, struct{}](4096, nil, 10*time.Second)

func firstSighting(updateID int) bool {
	if seenUpdates.Contains(updateID) {
		return false
	}
	seenUpdates.Add(updateID, struct{}{})
	return true
}

// LoggerMiddleware sets the update rid and context, then logs update.received once per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		if _, ok := c.Get("rid").(string); !ok {
			var chatID, userID int64
			if chat := c.Chat(); chat != nil {
				chatID = chat.ID
			}
			if user := c.Sender(); user != nil {
				userID = user.ID
			}
			c.Set("rid", logger.BuildRID(upd.ID, chatID, userID))
		}
		ctx := tghelpers.BuildContext(c)

		if logger.ShouldSampleDebug() && firstSighting(upd.ID) {
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil {
		if user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		if user.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", user.LanguageCode))
		}
	}

	upd := c.Update()
	var payload string
	switch {
	case upd.Callback != nil:
		var key string
		key, payload = callbacks.Split(upd.Callback)
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
	case upd.Message != nil:
		payload = c.Text()
	}
	if payload != "" {
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
	}
	return attrs
}
