package durationfmt

import "fmt"

// Format renders whole seconds as "{h}h {m}m", or "{m}m" under an hour.
// Units are floored; 3599 seconds is "59m".
func Format(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatSeconds floors a fractional second count before formatting.
func FormatSeconds(seconds float64) string {
	return Format(int64(seconds))
}

// FormatClock renders a running timer as HH:MM:SS.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
