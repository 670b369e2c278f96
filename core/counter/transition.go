package counter

import "math"

const (
	// ReadOnlyFeedback is shown when a value change is attempted on a read-only counter.
	ReadOnlyFeedback = "cannot edit while read-only"
	// LimitFeedback is shown when a step would leave the int64 range.
	LimitFeedback = "counter limit reached"
)

// Result is the outcome of applying a mode to a counter state.
type Result struct {
	Value    int64
	Settings Settings
	// Feedback is a short user-visible notice; empty when the action succeeded silently.
	Feedback string
}

// Changed reports whether the result differs from the given state.
func (r Result) Changed(value int64, settings Settings) bool {
	return r.Value != value || r.Settings != settings
}

// Apply computes the next state. It never fails: unknown modes leave the state untouched.
func Apply(mode Mode, value int64, settings Settings) Result {
	res := Result{Value: value, Settings: settings}
	switch mode {
	case ModeIncrement, ModeDecrement, ModeReset:
		if settings.ReadOnly {
			res.Feedback = ReadOnlyFeedback
			return res
		}
		switch {
		case mode == ModeReset:
			res.Value = 0
		case mode == ModeIncrement && value == math.MaxInt64,
			mode == ModeDecrement && value == math.MinInt64:
			res.Feedback = LimitFeedback
		case mode == ModeIncrement:
			res.Value = value + 1
		default:
			res.Value = value - 1
		}
	case ModeToggleVisibility:
		res.Settings = settings.ToggleVisibility()
	case ModeToggleReadOnly:
		res.Settings = settings.ToggleReadOnly()
	}
	return res
}

// ApplyToken is Apply for a decoded token.
func ApplyToken(t Token) Result {
	return Apply(t.Mode, t.Value, t.Settings)
}
