package domain

import (
	"testing"
)

// assertPartition checks that slots cover bounds exactly, in order, without
// overlaps or gaps, and that free and busy slots alternate.
func assertPartition(t *testing.T, bounds Interval, slots []Slot) {
	t.Helper()
	if len(slots) == 0 {
		t.Fatalf("no slots for %v", bounds)
	}
	if !slots[0].Start.Equal(bounds.Start) {
		t.Fatalf("first slot starts at %v, want %v", slots[0].Start, bounds.Start)
	}
	if !slots[len(slots)-1].End.Equal(bounds.End) {
		t.Fatalf("last slot ends at %v, want %v", slots[len(slots)-1].End, bounds.End)
	}
	for i, s := range slots {
		if !s.Valid() {
			t.Fatalf("slot %d is empty: %v", i, s.Interval)
		}
		if s.IsAvailable && len(s.Sources) != 0 {
			t.Fatalf("free slot %d has sources %v", i, s.Sources)
		}
		if !s.IsAvailable && len(s.Sources) == 0 {
			t.Fatalf("busy slot %d has no sources", i)
		}
		if i == 0 {
			continue
		}
		prev := slots[i-1]
		if !prev.End.Equal(s.Start) {
			t.Fatalf("slot %d starts at %v, previous ends at %v", i, s.Start, prev.End)
		}
		if prev.IsAvailable == s.IsAvailable {
			t.Fatalf("slots %d and %d share availability %v", i-1, i, s.IsAvailable)
		}
	}
}

func TestBuildSlots_SingleAppointmentOnMonday(t *testing.T) {
	bounds := BusinessWindow(at(t, "2024-12-02 00:00:00"))
	busy := AppointmentBusy([]Appointment{{
		ID:       1,
		DoctorID: 1,
		StartsAt: at(t, "2024-12-02 09:00:00"),
		EndsAt:   at(t, "2024-12-02 09:30:00"),
		Status:   StatusBooked,
	}})

	slots := BuildSlots(bounds, busy)
	assertPartition(t, bounds, slots)

	want := []struct {
		start, end string
		free       bool
	}{
		{"2024-12-02 07:00:00", "2024-12-02 09:00:00", true},
		{"2024-12-02 09:00:00", "2024-12-02 09:30:00", false},
		{"2024-12-02 09:30:00", "2024-12-02 17:00:00", true},
	}
	if len(slots) != len(want) {
		t.Fatalf("len(slots) = %d, want %d", len(slots), len(want))
	}
	for i, w := range want {
		s := slots[i]
		if !s.Start.Equal(at(t, w.start)) || !s.End.Equal(at(t, w.end)) || s.IsAvailable != w.free {
			t.Fatalf("slot %d = %v..%v free=%v, want %s..%s free=%v", i, s.Start, s.End, s.IsAvailable, w.start, w.end, w.free)
		}
	}
	if len(slots[1].Sources) != 1 || slots[1].Sources[0] != SourceAppointment {
		t.Fatalf("sources = %v, want [appointment]", slots[1].Sources)
	}
}

func TestBuildSlots_NoBusyTime(t *testing.T) {
	bounds := BusinessWindow(at(t, "2024-12-07 00:00:00"))
	slots := BuildSlots(bounds, nil)
	if len(slots) != 1 || !slots[0].IsAvailable || slots[0].Interval != bounds {
		t.Fatalf("slots = %+v, want one free slot covering %v", slots, bounds)
	}
}

func TestBuildSlots_CancelledAppointmentsAreFree(t *testing.T) {
	bounds := BusinessWindow(at(t, "2024-12-02 00:00:00"))
	busy := AppointmentBusy([]Appointment{{
		StartsAt: at(t, "2024-12-02 09:00:00"),
		EndsAt:   at(t, "2024-12-02 10:00:00"),
		Status:   StatusCancelled,
	}})
	if len(busy) != 0 {
		t.Fatalf("cancelled appointment produced busy time: %v", busy)
	}
	if slots := BuildSlots(bounds, busy); len(slots) != 1 {
		t.Fatalf("len(slots) = %d, want 1", len(slots))
	}
}

func TestBuildSlots_MergesTouchingSourcesAndClips(t *testing.T) {
	bounds, err := BusinessRange(at(t, "2024-12-02 00:00:00"), at(t, "2024-12-03 00:00:00"))
	if err != nil {
		t.Fatalf("BusinessRange error: %v", err)
	}

	window := bounds
	busy := AppointmentBusy([]Appointment{
		{StartsAt: at(t, "2024-12-02 10:00:00"), EndsAt: at(t, "2024-12-02 11:00:00"), Status: StatusBooked},
		{StartsAt: at(t, "2024-12-03 16:30:00"), EndsAt: at(t, "2024-12-03 17:00:00"), Status: StatusCompleted},
	})
	busy = append(busy, UnavailabilityBusy([]Unavailability{
		{StartsAt: at(t, "2024-12-02 11:00:00"), EndsAt: at(t, "2024-12-02 12:00:00"), Frequency: FrequencyOnce},
		{StartsAt: at(t, "2024-12-01 06:00:00"), EndsAt: at(t, "2024-12-01 07:30:00"), Frequency: FrequencyDaily},
	}, window)...)

	slots := BuildSlots(bounds, busy)
	assertPartition(t, bounds, slots)

	// The daily 06:00-07:30 block is clipped to opening time on the first day
	// and kept whole overnight on the second.
	first := slots[0]
	if first.IsAvailable || !first.End.Equal(at(t, "2024-12-02 07:30:00")) {
		t.Fatalf("first slot = %+v, want busy until 07:30", first)
	}

	var merged *Slot
	for i := range slots {
		if slots[i].Start.Equal(at(t, "2024-12-02 10:00:00")) {
			merged = &slots[i]
		}
	}
	if merged == nil {
		t.Fatalf("no slot starting at 10:00: %+v", slots)
	}
	if merged.IsAvailable || !merged.End.Equal(at(t, "2024-12-02 12:00:00")) {
		t.Fatalf("merged slot = %+v, want busy 10:00..12:00", merged)
	}
	if len(merged.Sources) != 2 || merged.Sources[0] != SourceAppointment || merged.Sources[1] != SourceUnavailability {
		t.Fatalf("merged sources = %v", merged.Sources)
	}

	last := slots[len(slots)-1]
	if last.IsAvailable || !last.Start.Equal(at(t, "2024-12-03 16:30:00")) {
		t.Fatalf("last slot = %+v, want busy from 16:30", last)
	}
}
