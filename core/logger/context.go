package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	keyLogger ctxKey = iota
	keyMeta
)

// UpdateMeta identifies the Telegram update a log line belongs to.
type UpdateMeta struct {
	RID      string
	UpdateID int
	UserID   int64
	ChatID   int64
	Handler  string
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// MetaFrom returns update metadata stored in ctx; the zero value when absent.
func MetaFrom(ctx context.Context) UpdateMeta {
	if ctx == nil {
		return UpdateMeta{}
	}
	m, _ := ctx.Value(keyMeta).(UpdateMeta)
	return m
}

func withMeta(ctx context.Context, fn func(*UpdateMeta)) context.Context {
	ctx = orBackground(ctx)
	m := MetaFrom(ctx)
	fn(&m)
	return context.WithValue(ctx, keyMeta, m)
}

// WithLogger stores log in ctx for handlers further down the chain.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	ctx = orBackground(ctx)
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, keyLogger, log)
}

// FromContext returns the logger stored in ctx or the global one.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(keyLogger).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID sets the correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withMeta(ctx, func(m *UpdateMeta) { m.RID = rid })
}

// RIDFrom returns the correlation id, if any.
func RIDFrom(ctx context.Context) string {
	return MetaFrom(ctx).RID
}

// WithUpdateMeta records the update, user and chat identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withMeta(ctx, func(m *UpdateMeta) {
		m.UpdateID = updateID
		m.UserID = userID
		m.ChatID = chatID
	})
}

// WithHandler names the handler serving the update. An empty name leaves ctx unchanged.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return orBackground(ctx)
	}
	return withMeta(ctx, func(m *UpdateMeta) { m.Handler = handler })
}

// Background returns context.Background().
func Background() context.Context {
	return context.Background()
}
