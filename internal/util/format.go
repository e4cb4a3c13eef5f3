package util

import (
	"math"
	"strconv"
	"time"
)

func FormatNumber(n uint64) string {
	s := strconv.FormatUint(n, 10)

	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}

	return s
}

// Rate returns n per second over elapsed, never dividing by zero.
func Rate(n uint64, elapsed time.Duration) float64 {
	return float64(n) / math.Max(elapsed.Seconds(), 0.001)
}
