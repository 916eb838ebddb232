package miscutils

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration formats d with a unit matching its magnitude.
func FormatDuration(d time.Duration) string {
	return FormatSeconds(d.Seconds())
}

// FormatSeconds formats a duration given in (possibly fractional) seconds, keeping
// sub-nanosecond precision for per-iteration times.
func FormatSeconds(s float64) string {
	if s == 0 {
		return "0s"
	}

	// Format based on magnitude.
	switch abs := math.Abs(s); {
	case abs < 1e-6:
		return fmt.Sprintf("%.2fns", s*1e9)
	case abs < 1e-3:
		return fmt.Sprintf("%.2fμs", s*1e6)
	case abs < 1:
		return fmt.Sprintf("%.2fms", s*1e3)
	default:
		return fmt.Sprintf("%.2fs", s)
	}
}

// siPrefixes are the prefixes used by FormatSI, largest first.
var siPrefixes = []struct {
	factor float64
	symbol string
}{
	{1e12, "T"},
	{1e9, "G"},
	{1e6, "M"},
	{1e3, "k"},
}

// FormatSI formats v with a metric prefix and the given unit, e.g. "12.35k/s".
func FormatSI(v float64, unit string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%v%s", v, unit)
	}

	abs := math.Abs(v)
	for _, p := range siPrefixes {
		if abs >= p.factor {
			return fmt.Sprintf("%.2f%s%s", v/p.factor, p.symbol, unit)
		}
	}
	return fmt.Sprintf("%.4g%s", v, unit)
}
