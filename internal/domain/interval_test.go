package domain

import (
	"testing"
	"time"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func span(t *testing.T, start, end string) Interval {
	t.Helper()
	return Interval{Start: at(t, start), End: at(t, end)}
}

// threeCaseOverlap is the disjunction used by the booking queries: a starts
// inside b, a ends inside b, or a contains b.
func threeCaseOverlap(a, b Interval) bool {
	startsInside := !a.Start.Before(b.Start) && a.Start.Before(b.End)
	endsInside := a.End.After(b.Start) && !a.End.After(b.End)
	contains := a.Start.Before(b.Start) && a.End.After(b.End)
	return startsInside || endsInside || contains
}

func TestNewInterval_RejectsEmptyAndReversed(t *testing.T) {
	start := at(t, "2024-12-02 09:00:00")
	if _, err := NewInterval(start, start); err != ErrEmptyInterval {
		t.Fatalf("zero length err = %v, want %v", err, ErrEmptyInterval)
	}
	if _, err := NewInterval(start, start.Add(-time.Minute)); err != ErrEmptyInterval {
		t.Fatalf("reversed err = %v, want %v", err, ErrEmptyInterval)
	}
	iv, err := NewInterval(start, start.Add(time.Minute))
	if err != nil {
		t.Fatalf("NewInterval error: %v", err)
	}
	if iv.Duration() != time.Minute {
		t.Fatalf("duration = %v, want 1m", iv.Duration())
	}
}

func TestOverlaps(t *testing.T) {
	base := span(t, "2024-12-02 09:00:00", "2024-12-02 10:00:00")

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", base, true},
		{"touching before", span(t, "2024-12-02 08:00:00", "2024-12-02 09:00:00"), false},
		{"touching after", span(t, "2024-12-02 10:00:00", "2024-12-02 11:00:00"), false},
		{"starts inside", span(t, "2024-12-02 09:30:00", "2024-12-02 10:30:00"), true},
		{"ends inside", span(t, "2024-12-02 08:30:00", "2024-12-02 09:30:00"), true},
		{"contains", span(t, "2024-12-02 08:00:00", "2024-12-02 11:00:00"), true},
		{"contained", span(t, "2024-12-02 09:15:00", "2024-12-02 09:45:00"), true},
		{"disjoint", span(t, "2024-12-02 12:00:00", "2024-12-02 13:00:00"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.other); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.other.Overlaps(base); got != tc.want {
				t.Fatalf("Overlaps (reversed) = %v, want %v", got, tc.want)
			}
			if got := threeCaseOverlap(tc.other, base); got != tc.want {
				t.Fatalf("three-case disjunction = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClip(t *testing.T) {
	bounds := span(t, "2024-12-02 07:00:00", "2024-12-02 17:00:00")

	got, ok := span(t, "2024-12-02 06:00:00", "2024-12-02 08:00:00").Clip(bounds)
	if !ok {
		t.Fatalf("expected clipped interval")
	}
	if !got.Start.Equal(bounds.Start) || !got.End.Equal(at(t, "2024-12-02 08:00:00")) {
		t.Fatalf("clip = %v..%v", got.Start, got.End)
	}

	if _, ok := span(t, "2024-12-02 17:00:00", "2024-12-02 18:00:00").Clip(bounds); ok {
		t.Fatalf("interval touching the end must clip to nothing")
	}
}

func TestMerge(t *testing.T) {
	in := []Interval{
		span(t, "2024-12-02 13:00:00", "2024-12-02 14:00:00"),
		span(t, "2024-12-02 09:00:00", "2024-12-02 10:00:00"),
		span(t, "2024-12-02 09:30:00", "2024-12-02 09:45:00"),
		span(t, "2024-12-02 10:00:00", "2024-12-02 11:00:00"),
	}

	got := Merge(in)
	want := []Interval{
		span(t, "2024-12-02 09:00:00", "2024-12-02 11:00:00"),
		span(t, "2024-12-02 13:00:00", "2024-12-02 14:00:00"),
	}
	if len(got) != len(want) {
		t.Fatalf("len(merge) = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("merge[%d] = %v..%v, want %v..%v", i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
	if !in[0].Start.Equal(at(t, "2024-12-02 13:00:00")) {
		t.Fatalf("Merge must not reorder its input")
	}
}

func TestComplement(t *testing.T) {
	bounds := span(t, "2024-12-02 07:00:00", "2024-12-02 17:00:00")

	t.Run("no busy intervals", func(t *testing.T) {
		got := Complement(bounds, nil)
		if len(got) != 1 || got[0] != bounds {
			t.Fatalf("complement = %v, want whole bounds", got)
		}
	})

	t.Run("busy at both edges and nested", func(t *testing.T) {
		got := Complement(bounds, []Interval{
			span(t, "2024-12-02 06:00:00", "2024-12-02 08:00:00"),
			span(t, "2024-12-02 12:00:00", "2024-12-02 15:00:00"),
			span(t, "2024-12-02 13:00:00", "2024-12-02 14:00:00"),
			span(t, "2024-12-02 16:00:00", "2024-12-02 18:00:00"),
		})
		want := []Interval{
			span(t, "2024-12-02 08:00:00", "2024-12-02 12:00:00"),
			span(t, "2024-12-02 15:00:00", "2024-12-02 16:00:00"),
		}
		if len(got) != len(want) {
			t.Fatalf("complement = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("complement[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("fully covered", func(t *testing.T) {
		got := Complement(bounds, []Interval{span(t, "2024-12-02 00:00:00", "2024-12-02 23:59:59")})
		if len(got) != 0 {
			t.Fatalf("complement = %v, want empty", got)
		}
	})
}
