package domain

import (
	"errors"
	"sort"
	"time"
)

var ErrEmptyInterval = errors.New("interval end must be after start")

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrEmptyInterval
	}
	return Interval{Start: start, End: end}, nil
}

func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether i and o share at least one instant. Intervals that
// only touch (one ends where the other starts) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// Clip returns the part of i inside bounds. ok is false when nothing is left.
func (i Interval) Clip(bounds Interval) (Interval, bool) {
	out := i
	if out.Start.Before(bounds.Start) {
		out.Start = bounds.Start
	}
	if out.End.After(bounds.End) {
		out.End = bounds.End
	}
	if !out.Valid() {
		return Interval{}, false
	}
	return out, true
}

func SortIntervals(xs []Interval) {
	sort.SliceStable(xs, func(a, b int) bool {
		if xs[a].Start.Equal(xs[b].Start) {
			return xs[a].End.Before(xs[b].End)
		}
		return xs[a].Start.Before(xs[b].Start)
	})
}

// Merge collapses overlapping or touching intervals into maximal runs. The input
// is not modified and may be in any order.
func Merge(xs []Interval) []Interval {
	if len(xs) == 0 {
		return nil
	}
	sorted := make([]Interval, 0, len(xs))
	for _, x := range xs {
		if x.Valid() {
			sorted = append(sorted, x)
		}
	}
	SortIntervals(sorted)

	out := make([]Interval, 0, len(sorted))
	for _, x := range sorted {
		if n := len(out); n > 0 && !x.Start.After(out[n-1].End) {
			if x.End.After(out[n-1].End) {
				out[n-1].End = x.End
			}
			continue
		}
		out = append(out, x)
	}
	return out
}

// Complement returns the gaps of bounds not covered by busy.
func Complement(bounds Interval, busy []Interval) []Interval {
	if !bounds.Valid() {
		return nil
	}

	clipped := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if c, ok := b.Clip(bounds); ok {
			clipped = append(clipped, c)
		}
	}

	var out []Interval
	cursor := bounds.Start
	for _, b := range Merge(clipped) {
		if cursor.Before(b.Start) {
			out = append(out, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(bounds.End) {
		out = append(out, Interval{Start: cursor, End: bounds.End})
	}
	return out
}
