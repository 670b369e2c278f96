package counter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Mode identifies the action a button performs.
type Mode byte

const (
	ModeIncrement        Mode = '+'
	ModeDecrement        Mode = '-'
	ModeReset            Mode = '@'
	ModeToggleVisibility Mode = '~'
	ModeToggleReadOnly   Mode = '#'
)

var allModes = []Mode{ModeIncrement, ModeDecrement, ModeReset, ModeToggleVisibility, ModeToggleReadOnly}

// ErrNotCounter marks callback data that is not a counter interaction.
var ErrNotCounter = errors.New("counter: not a counter token")

// Pattern matches a full counter token. Groups: mode, value, flags.
var Pattern = regexp.MustCompile(`^([` + modeClass() + `])counter=(-?\d+),settings=([hsre]+)$`)

func modeClass() string {
	var b strings.Builder
	for _, m := range allModes {
		// every mode char is punctuation, escaping keeps '-' from forming a range
		b.WriteByte('\\')
		b.WriteByte(byte(m))
	}
	return b.String()
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, known := range allModes {
		if m == known {
			return true
		}
	}
	return false
}

func (m Mode) String() string {
	switch m {
	case ModeIncrement:
		return "increment"
	case ModeDecrement:
		return "decrement"
	case ModeReset:
		return "reset"
	case ModeToggleVisibility:
		return "toggle_visibility"
	case ModeToggleReadOnly:
		return "toggle_readonly"
	}
	return "unknown"
}

// Token is the full state carried by one button.
type Token struct {
	Mode     Mode
	Value    int64
	Settings Settings
}

// String encodes the token as callback data.
func (t Token) String() string {
	return fmt.Sprintf("%ccounter=%d,settings=%s", byte(t.Mode), t.Value, t.Settings.Flags())
}

// ParseToken decodes callback data. Anything that does not match the grammar
// exactly, including values that overflow int64, yields ErrNotCounter.
func ParseToken(data string) (Token, error) {
	m := Pattern.FindStringSubmatch(data)
	if m == nil {
		return Token{}, ErrNotCounter
	}
	value, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("%w: value %q: %v", ErrNotCounter, m[2], err)
	}
	settings, err := ParseSettings(m[3])
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrNotCounter, err)
	}
	return Token{Mode: Mode(m[1][0]), Value: value, Settings: settings}, nil
}
