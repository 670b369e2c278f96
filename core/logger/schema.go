package logger

import (
	"log/slog"
	"strings"
)

// levelName maps a record level onto the four names the log schema allows;
// levels between them round down.
func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// normalizeStatus lowercases known statuses; anything else passes through untouched.
func normalizeStatus(status string) string {
	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case "ok", "fail", "skip", "retry", "rate_limited", "cancelled":
		return s
	}
	return status
}

// normalizeOutcome reports false for values outside the outcome enum.
func normalizeOutcome(outcome string) (string, bool) {
	switch o := strings.ToLower(strings.TrimSpace(outcome)); o {
	case "ok", "fail", "cancelled", "rate_limited":
		return o, true
	}
	return "", false
}

// defaultKeyOrder is the field order used unless logging.keys_order overrides it.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type",
	"handler", "op", "cb_key", "outcome", "duration_ms",
	"messages", "kb", "payload", "lang", "username",
	"mode", "value", "settings", "feedback",
	"listen", "public_url",
	"err", "err_code", "cause", "attempts",
	"rate_limited", "breaker",
}
