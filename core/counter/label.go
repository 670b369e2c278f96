package counter

import (
	"regexp"
	"strconv"
	"strings"
)

var setValuePattern = regexp.MustCompile(`^(.+?)\s*=\s*(\d+)$`)

// ParseLabel splits user text into a counter label and initial value.
// "Apple=99" yields ("Apple", 99). Text without a trailing "=<digits>", or whose
// digits overflow int64, is used verbatim with value 0.
func ParseLabel(text string) (string, int64) {
	text = strings.TrimSpace(text)
	m := setValuePattern.FindStringSubmatch(text)
	if m == nil {
		return text, 0
	}
	label := strings.TrimSpace(m[1])
	if label == "" {
		return text, 0
	}
	v, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return text, 0
	}
	return label, v
}
