package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/counterbot/core/counter"
	"github.com/m3rciful/counterbot/core/logger"
	"github.com/m3rciful/counterbot/core/telegram/callbacks"
	"github.com/m3rciful/counterbot/core/telegram/format"
	tghelpers "github.com/m3rciful/counterbot/core/telegram/helpers"
	"github.com/m3rciful/counterbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Markup renders the counter keyboard for telebot.
func Markup(value int64, settings counter.Settings) *tele.ReplyMarkup {
	layout := counter.Layout(value, settings)
	rows := make([][]keyboard.InlineBtn, len(layout))
	for i, row := range layout {
		btns := make([]keyboard.InlineBtn, len(row))
		for j, b := range row {
			btns[j] = keyboard.InlineBtn{Text: b.Label, Data: b.Data()}
		}
		rows[i] = btns
	}
	return keyboard.InlineButtonsRows(rows...)
}

func (a *App) onStart(c tele.Context) error {
	greeting := "Hi!"
	if u := c.Sender(); u != nil {
		greeting = "Hi " + format.MentionHTML(u) + "!"
	}
	return tghelpers.SendHTML(c, greeting+"\nUse /help")
}

func (a *App) onHelp(c tele.Context) error {
	return tghelpers.SendText(c, a.cfg.Counter.HelpText)
}

func (a *App) onVersion(c tele.Context) error {
	return tghelpers.SendText(c, versionText())
}

// onCreate turns any non-command text into a new counter message.
func (a *App) onCreate(c tele.Context) error {
	label, value := counter.ParseLabel(c.Text())
	settings := counter.DefaultSettings()
	ctx := tghelpers.BuildContext(c)

	// sent synchronously: the source message is deleted only once the counter exists
	if err := c.Send(label, &tele.SendOptions{ReplyMarkup: Markup(value, settings)}); err != nil {
		return fmt.Errorf("send counter: %w", err)
	}
	logger.Debug(ctx, "counter", "counter.created",
		slog.Int64("value", value),
		slog.String("settings", settings.Flags()),
	)

	if a.cfg.Counter.ShouldDeleteSource() {
		if err := tghelpers.DeleteMessage(c); err != nil {
			// missing delete rights in groups is expected
			logger.Warn(ctx, "counter", "source.delete_failed",
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	return nil
}

// onCounter applies a button press: decode the token, step the state, redraw the keyboard.
func (a *App) onCounter(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	tok, err := counter.ParseToken(callbacks.CallbackPayload(c))
	if err != nil {
		logger.Debug(ctx, "counter", "token.invalid",
			slog.String("err", err.Error()),
		)
		return callbacks.Answer(c)
	}

	res := counter.ApplyToken(tok)
	logger.LogEvent(ctx, logger.Counter, slog.LevelDebug, "counter.applied",
		slog.String("mode", tok.Mode.String()),
		slog.Int64("value", res.Value),
		slog.String("settings", res.Settings.Flags()),
		slog.String("feedback", res.Feedback),
	)

	if res.Feedback != "" {
		_ = callbacks.AnswerText(c, a.feedbackText(res.Feedback))
	} else {
		_ = callbacks.Answer(c)
	}

	if !res.Changed(tok.Value, tok.Settings) {
		return nil
	}
	if err := c.Edit(Markup(res.Value, res.Settings)); err != nil {
		if isNotModified(err) {
			return nil
		}
		return fmt.Errorf("edit counter: %w", err)
	}
	return nil
}

func (a *App) feedbackText(feedback string) string {
	if feedback == counter.ReadOnlyFeedback && a.cfg.Counter.ReadOnlyText != "" {
		return a.cfg.Counter.ReadOnlyText
	}
	return feedback
}

// isNotModified reports Telegram's "message is not modified" rejection of an identical edit.
// Descriptions telebot has no sentinel for are matched by text.
func isNotModified(err error) bool {
	if errors.Is(err, tele.ErrMessageNotModified) || errors.Is(err, tele.ErrSameMessageContent) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "message is not modified")
}
