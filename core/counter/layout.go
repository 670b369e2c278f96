package counter

import "strconv"

// Button is a rendered control: its label and the token sent back when pressed.
type Button struct {
	Mode  Mode
	Label string
	Token Token
}

// Data returns the callback data for the button.
func (b Button) Data() string {
	return b.Token.String()
}

// Label returns the caption for a mode given the current state.
func Label(mode Mode, value int64, settings Settings) string {
	switch mode {
	case ModeIncrement:
		return "➕ (" + strconv.FormatInt(value, 10) + ")"
	case ModeDecrement:
		return "➖"
	case ModeReset:
		return "🔄"
	case ModeToggleVisibility:
		if settings.Hidden {
			return "⚙️"
		}
		return "🔼"
	case ModeToggleReadOnly:
		if settings.ReadOnly {
			return "🔒 Read-only"
		}
		return "🔓 Editable"
	}
	return "?"
}

func button(mode Mode, value int64, settings Settings) Button {
	return Button{
		Mode:  mode,
		Label: Label(mode, value, settings),
		Token: Token{Mode: mode, Value: value, Settings: settings},
	}
}

// Layout returns the button rows for a counter.
//
// Row 1 always holds increment and the visibility toggle. When shown, an editable
// counter gets a decrement/reset row, and every shown counter ends with the
// read-only toggle.
func Layout(value int64, settings Settings) [][]Button {
	rows := [][]Button{{
		button(ModeIncrement, value, settings),
		button(ModeToggleVisibility, value, settings),
	}}
	if settings.Hidden {
		return rows
	}
	if !settings.ReadOnly {
		rows = append(rows, []Button{
			button(ModeDecrement, value, settings),
			button(ModeReset, value, settings),
		})
	}
	rows = append(rows, []Button{button(ModeToggleReadOnly, value, settings)})
	return rows
}
