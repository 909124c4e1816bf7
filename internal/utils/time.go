package utils

import (
	"time"
)

// IsPeakHour reports whether t falls in a commute window. Feeds the fare
// calculator's peak multiplier.
func IsPeakHour(t time.Time) bool {
	h := t.Hour()
	return (h >= MorningPeakFrom && h < MorningPeakTo) ||
		(h >= EveningPeakFrom && h < EveningPeakTo)
}

// IsNightTime reports whether t falls in the night tariff window, which
// wraps midnight.
func IsNightTime(t time.Time) bool {
	h := t.Hour()
	return h >= NightFrom || h < NightTo
}
