package counter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	values := []int64{0, 1, 42, -1, -250, 9223372036854775807, -9223372036854775808}
	settings := []Settings{
		{Hidden: true, ReadOnly: false},
		{Hidden: true, ReadOnly: true},
		{Hidden: false, ReadOnly: false},
		{Hidden: false, ReadOnly: true},
	}
	for _, mode := range allModes {
		for _, v := range values {
			for _, s := range settings {
				tok := Token{Mode: mode, Value: v, Settings: s}
				got, err := ParseToken(tok.String())
				require.NoError(t, err, tok.String())
				assert.Equal(t, tok, got)
			}
		}
	}
}

func TestTokenEncoding(t *testing.T) {
	tok := Token{Mode: ModeIncrement, Value: 7, Settings: Settings{Hidden: false, ReadOnly: true}}
	assert.Equal(t, "+counter=7,settings=sr", tok.String())

	tok = Token{Mode: ModeDecrement, Value: -3, Settings: DefaultSettings()}
	assert.Equal(t, "-counter=-3,settings=he", tok.String())
}

func TestTokenFitsCallbackLimit(t *testing.T) {
	tok := Token{Mode: ModeToggleReadOnly, Value: -9223372036854775808, Settings: DefaultSettings()}
	assert.LessOrEqual(t, len(tok.String()), 64)
}

func TestParseTokenRejects(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"unknown mode":     "*counter=1,settings=he",
		"no settings":      "+counter=1",
		"legacy format":    "+counter=1",
		"missing digits":   "+counter=,settings=he",
		"letters in value": "+counter=1a,settings=he",
		"trailing junk":    "+counter=1,settings=he ",
		"leading junk":     " +counter=1,settings=he",
		"unknown flag":     "+counter=1,settings=hx",
		"missing pair":     "+counter=1,settings=h",
		"both visibility":  "+counter=1,settings=hse",
		"both edit":        "+counter=1,settings=sre",
		"overflow":         "+counter=9223372036854775808,settings=he",
		"range not class":  "5counter=1,settings=he",
		"telebot unique":   "\fcounter|+counter=1,settings=he",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotCounter))
		})
	}
}

func TestParseSettingsAnyOrder(t *testing.T) {
	s, err := ParseSettings("rs")
	require.NoError(t, err)
	assert.Equal(t, Settings{Hidden: false, ReadOnly: true}, s)

	s, err = ParseSettings("ehh")
	require.NoError(t, err)
	assert.Equal(t, Settings{Hidden: true, ReadOnly: false}, s)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "increment", ModeIncrement.String())
	assert.Equal(t, "toggle_readonly", ModeToggleReadOnly.String())
	assert.Equal(t, "unknown", Mode('x').String())
	assert.True(t, ModeReset.Valid())
	assert.False(t, Mode('x').Valid())
}
