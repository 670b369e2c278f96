package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler lets numerator out of every denominator events through.
// A zero ratio disables sampling.
type ratioSampler struct {
	mu       sync.Mutex
	num, den int
	seen     int
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

func (s *ratioSampler) Set(num, den int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = 0
	if num <= 0 || den <= 0 {
		s.num, s.den = 0, 0
		return
	}
	s.num, s.den = min(num, den), den
}

func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.den == 0 {
		return true
	}
	s.seen = s.seen%s.den + 1
	return s.seen <= s.num
}

// parseRatioSpec accepts "n/m" or a bare "m" meaning 1/m.
// Anything unparsable or non-positive yields 0, 0.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	numPart, denPart, ok := strings.Cut(spec, "/")
	if !ok {
		numPart, denPart = "1", spec
	}
	num, err := strconv.Atoi(strings.TrimSpace(numPart))
	if err != nil {
		return 0, 0
	}
	den, err := strconv.Atoi(strings.TrimSpace(denPart))
	if err != nil || num <= 0 || den <= 0 {
		return 0, 0
	}
	return num, den
}
