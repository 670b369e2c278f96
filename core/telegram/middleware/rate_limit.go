package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/m3rciful/counterbot/core/logger"
	"github.com/m3rciful/counterbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

const (
	defaultRateLimitUsers = 10_000
	rateLimitIdleTTL      = 10 * time.Minute
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	// Interval is the minimum gap between two updates from one user.
	Interval time.Duration
	// Burst lets a user send this many updates back to back; 0 means 1.
	Burst int
	// MaxUsers bounds the number of tracked users; idle ones expire anyway.
	MaxUsers  int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// UpdateKind names the update for exclusion checks: "callback", "message", "inline_query" or "other".
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// RateLimitMiddleware drops updates from users who exceed one update per Interval.
// Limited callback queries are still answered so the client stops its spinner.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.MaxUsers <= 0 {
		opts.MaxUsers = defaultRateLimitUsers
	}
	var (
		mu       sync.Mutex
		limiters = expirable.NewLRU[int64, *rate.Limiter](opts.MaxUsers, nil, rateLimitIdleTTL)
	)
	limiterFor := func(userID int64) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters.Get(userID); ok {
			return l
		}
		l := rate.NewLimiter(rate.Every(opts.Interval), opts.Burst)
		limiters.Add(userID, l)
		return l
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[UpdateKind(c.Update())]; skip {
				return next(c)
			}
			if limiterFor(user.ID).Allow() {
				return next(c)
			}

			attrs := []any{
				slog.String("event", "tg.rate_limit"),
				slog.Int64("user_id", user.ID),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chat.ID))
			}
			logger.TG.Warn("rate limit", attrs...)

			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			if c.Callback() != nil {
				return callbacks.Answer(c)
			}
			return nil
		}
	}
}
