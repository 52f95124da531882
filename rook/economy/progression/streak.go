package progression

import "time"

// CalculateStreakUTC advances a daily streak based on UTC calendar days.
// Same day keeps the current value, exactly one day of gap extends it, and
// anything longer resets to 1. A zero lastActive starts a fresh streak.
func CalculateStreakUTC(current int, lastActive, now time.Time) int {
	if lastActive.IsZero() {
		return 1
	}

	last := lastActive.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)

	switch int(today.Sub(last).Hours() / 24) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}
