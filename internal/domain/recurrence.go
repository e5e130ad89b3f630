package domain

import (
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// ExpandUnavailability returns the occurrences of u overlapping window, in
// ascending order. Recurring rows repeat their first span without end; a
// monthly row skips months that lack its day of month.
func ExpandUnavailability(u Unavailability, window Interval) []Interval {
	first := u.Interval()
	if !first.Valid() || !window.Valid() {
		return nil
	}

	switch u.Frequency {
	case FrequencyOnce:
		if first.Overlaps(window) {
			return []Interval{first}
		}
		return nil
	case FrequencyDaily:
		return expandFixed(first, day, window)
	case FrequencyWeekly:
		return expandFixed(first, week, window)
	case FrequencyMonthly:
		return expandMonthly(first, window)
	}
	return nil
}

func expandFixed(first Interval, period time.Duration, window Interval) []Interval {
	duration := first.Duration()

	// Occurrences before index k ended no later than window.Start.
	k := 0
	if gap := window.Start.Sub(first.End); gap > 0 {
		k = int(gap / period)
	}

	var out []Interval
	for ; ; k++ {
		start := first.Start.Add(time.Duration(k) * period)
		if !start.Before(window.End) {
			break
		}
		occ := Interval{Start: start, End: start.Add(duration)}
		if occ.End.After(window.Start) {
			out = append(out, occ)
		}
	}
	return out
}

func expandMonthly(first Interval, window Interval) []Interval {
	duration := first.Duration()

	k := monthsBetween(first.Start, window.Start) - 1 - int(duration/(28*day))
	if k < 0 {
		k = 0
	}

	var out []Interval
	for ; ; k++ {
		start := first.Start.AddDate(0, k, 0)
		if !start.Before(window.End) {
			break
		}
		if start.Day() != first.Start.Day() {
			continue
		}
		occ := Interval{Start: start, End: start.Add(duration)}
		if occ.End.After(window.Start) {
			out = append(out, occ)
		}
	}
	return out
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// OccursWithin reports whether any occurrence of u overlaps window.
func OccursWithin(u Unavailability, window Interval) bool {
	return len(ExpandUnavailability(u, window)) > 0
}
