package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var longUnits = map[byte]time.Duration{
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseDuration is time.ParseDuration plus leading day (d) and week (w) terms,
// e.g. "30d", "2w", "1d12h".
func ParseDuration(s string) (time.Duration, error) {
	rest := strings.TrimSpace(s)
	var total time.Duration
	consumed := false
	for {
		n := 0
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		if n == 0 || n == len(rest) {
			break
		}
		unit, ok := longUnits[rest[n]]
		if !ok {
			break
		}
		count, err := strconv.Atoi(rest[:n])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		total += time.Duration(count) * unit
		rest = rest[n+1:]
		consumed = true
	}
	if rest == "" && consumed {
		return total, nil
	}

	d, err := time.ParseDuration(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return total + d, nil
}
