package commands

import tele "gopkg.in/telebot.v4"

// Command is a registered slash command.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands run only for telegram.admin_id and never appear in the menu.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}

// Listed reports whether the command belongs in the bot's command menu.
func (c Command) Listed() bool {
	return !c.Hidden && !c.AdminOnly
}
