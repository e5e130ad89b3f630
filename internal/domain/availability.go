package domain

import (
	"sort"
)

type SourceKind string

const (
	SourceAppointment    SourceKind = "appointment"
	SourceUnavailability SourceKind = "unavailability"
)

// BusyInterval is time a doctor cannot be booked, tagged with where it came from.
type BusyInterval struct {
	Interval
	Source SourceKind
}

// Slot is one entry of an availability listing. Busy slots list every source
// that contributed to them.
type Slot struct {
	Interval
	IsAvailable bool
	Sources     []SourceKind
}

func AppointmentBusy(appts []Appointment) []BusyInterval {
	out := make([]BusyInterval, 0, len(appts))
	for _, a := range appts {
		if !a.Blocking() {
			continue
		}
		out = append(out, BusyInterval{Interval: a.Interval(), Source: SourceAppointment})
	}
	return out
}

// UnavailabilityBusy expands rows into concrete busy intervals within window.
func UnavailabilityBusy(rows []Unavailability, window Interval) []BusyInterval {
	var out []BusyInterval
	for _, u := range rows {
		for _, occ := range ExpandUnavailability(u, window) {
			out = append(out, BusyInterval{Interval: occ, Source: SourceUnavailability})
		}
	}
	return out
}

// BuildSlots partitions bounds into alternating free and busy slots. Busy
// intervals are clipped to bounds and merged when they overlap or touch, so
// consecutive slots never overlap and together cover bounds exactly.
func BuildSlots(bounds Interval, busy []BusyInterval) []Slot {
	if !bounds.Valid() {
		return nil
	}

	clipped := make([]BusyInterval, 0, len(busy))
	for _, b := range busy {
		if c, ok := b.Interval.Clip(bounds); ok {
			clipped = append(clipped, BusyInterval{Interval: c, Source: b.Source})
		}
	}
	sort.SliceStable(clipped, func(i, j int) bool {
		return clipped[i].Start.Before(clipped[j].Start)
	})

	var runs []Slot
	for _, b := range clipped {
		if n := len(runs); n > 0 && !b.Start.After(runs[n-1].End) {
			last := &runs[n-1]
			if b.End.After(last.End) {
				last.End = b.End
			}
			last.Sources = addSource(last.Sources, b.Source)
			continue
		}
		runs = append(runs, Slot{Interval: b.Interval, Sources: []SourceKind{b.Source}})
	}

	busyIntervals := make([]Interval, 0, len(runs))
	for _, r := range runs {
		busyIntervals = append(busyIntervals, r.Interval)
	}

	out := runs
	for _, free := range Complement(bounds, busyIntervals) {
		out = append(out, Slot{Interval: free, IsAvailable: true})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func addSource(sources []SourceKind, s SourceKind) []SourceKind {
	for _, existing := range sources {
		if existing == s {
			return sources
		}
	}
	return append(sources, s)
}
