package counter

import (
	"errors"
	"strings"
)

// Flag is a single settings character carried in a token.
type Flag byte

const (
	// FlagHidden collapses the keyboard to the first row.
	FlagHidden Flag = 'h'
	// FlagShown expands the keyboard with the settings rows.
	FlagShown Flag = 's'
	// FlagReadOnly rejects value changes.
	FlagReadOnly Flag = 'r'
	// FlagEditable allows value changes.
	FlagEditable Flag = 'e'
)

// ErrBadSettings is returned when flags do not form exactly one member of each pair.
var ErrBadSettings = errors.New("counter: invalid settings flags")

// Settings holds the two mutually exclusive flag pairs.
type Settings struct {
	Hidden   bool
	ReadOnly bool
}

// DefaultSettings are applied to newly created counters.
func DefaultSettings() Settings {
	return Settings{Hidden: true, ReadOnly: false}
}

// Flags returns the canonical flag characters: visibility first, then editability.
func (s Settings) Flags() string {
	var b strings.Builder
	b.Grow(2)
	if s.Hidden {
		b.WriteByte(byte(FlagHidden))
	} else {
		b.WriteByte(byte(FlagShown))
	}
	if s.ReadOnly {
		b.WriteByte(byte(FlagReadOnly))
	} else {
		b.WriteByte(byte(FlagEditable))
	}
	return b.String()
}

// ToggleVisibility swaps Hidden and Shown.
func (s Settings) ToggleVisibility() Settings {
	s.Hidden = !s.Hidden
	return s
}

// ToggleReadOnly swaps ReadOnly and Editable.
func (s Settings) ToggleReadOnly() Settings {
	s.ReadOnly = !s.ReadOnly
	return s
}

// ParseSettings decodes flag characters in any order. Duplicates are tolerated,
// but each pair must resolve to exactly one member.
func ParseSettings(raw string) (Settings, error) {
	if raw == "" {
		return Settings{}, ErrBadSettings
	}
	var hidden, shown, readOnly, editable bool
	for i := 0; i < len(raw); i++ {
		switch Flag(raw[i]) {
		case FlagHidden:
			hidden = true
		case FlagShown:
			shown = true
		case FlagReadOnly:
			readOnly = true
		case FlagEditable:
			editable = true
		default:
			return Settings{}, ErrBadSettings
		}
	}
	if hidden == shown || readOnly == editable {
		return Settings{}, ErrBadSettings
	}
	return Settings{Hidden: hidden, ReadOnly: readOnly}, nil
}
