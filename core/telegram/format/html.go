package format

import (
	"html"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// EscapeHTML escapes text for Telegram's HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// DisplayName returns "First Last", falling back to @username and then the numeric ID.
func DisplayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}

// MentionHTML renders a clickable mention of u for HTML parse mode.
func MentionHTML(u *tele.User) string {
	if u == nil {
		return ""
	}
	return `<a href="tg://user?id=` + strconv.FormatInt(u.ID, 10) + `">` + EscapeHTML(DisplayName(u)) + `</a>`
}
