package middleware

import tele "gopkg.in/telebot.v4"

const (
	keyMessages = "messages"
	keyKeyboard = "kb"
)

// metricsContext counts outgoing messages and edits so handler summaries can report them.
type metricsContext struct{ tele.Context }

func (m metricsContext) count(err error, what any, opts []any) error {
	if err != nil {
		return err
	}
	n, _ := m.Get(keyMessages).(int)
	m.Set(keyMessages, n+1)
	if hasKeyboard(append(opts, what)) {
		m.Set(keyKeyboard, true)
	}
	return nil
}

func hasKeyboard(values []any) bool {
	for _, v := range values {
		switch x := v.(type) {
		case *tele.SendOptions:
			if x != nil && x.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if x != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) Send(what any, opts ...any) error {
	return m.count(m.Context.Send(what, opts...), what, opts)
}

func (m metricsContext) Edit(what any, opts ...any) error {
	return m.count(m.Context.Edit(what, opts...), what, opts)
}

// MessageMetricsMiddleware resets the counters and wraps the context for downstream handlers.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(keyMessages, 0)
		c.Set(keyKeyboard, false)
		return next(metricsContext{Context: c})
	}
}

// GetCounters returns how many messages the handler sent and whether any carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	msgs, _ := c.Get(keyMessages).(int)
	kb, _ := c.Get(keyKeyboard).(bool)
	return msgs, kb
}
