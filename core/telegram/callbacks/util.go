package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

const answeredKey = "cb_answered"

// ParseCallbackData parses Telebot's \f<unique>|<payload> encoding.
// Data without the \f marker is raw callback data: the key is empty and the payload is the whole string.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw, ok := strings.CutPrefix(cb.Data, "\f")
	if !ok {
		return "", cb.Data
	}
	parts := strings.SplitN(raw, "|", 2)
	unique := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return unique, payload
}

// CallbackPayload returns payload (after '|') parsed from Data, or the raw data for unkeyed buttons.
func CallbackPayload(c tele.Context) string {
	_, payload := Split(c.Callback())
	return payload
}

// Answer responds to the callback query once. Telegram rejects a second answer,
// so routers check Answered before sending their default empty response.
func Answer(c tele.Context, resp ...*tele.CallbackResponse) error {
	if Answered(c) {
		return nil
	}
	c.Set(answeredKey, true)
	if len(resp) > 0 && resp[0] != nil {
		return c.Respond(resp[0])
	}
	return c.Respond()
}

// AnswerText shows text as a toast on the user's client.
func AnswerText(c tele.Context, text string) error {
	return Answer(c, &tele.CallbackResponse{Text: text})
}

// Answered reports whether Answer was already called for this update.
func Answered(c tele.Context) bool {
	v, _ := c.Get(answeredKey).(bool)
	return v
}

// Split returns the routing key and payload of cb, honouring a key telebot already stripped.
func Split(cb *tele.Callback) (key, payload string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	return ParseCallbackData(cb)
}
