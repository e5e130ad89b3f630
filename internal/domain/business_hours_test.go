package domain

import (
	"testing"
)

func TestBusinessWindow(t *testing.T) {
	tests := []struct {
		date      string
		wantOpen  string
		wantClose string
	}{
		{"2024-12-02 12:00:00", "2024-12-02 07:00:00", "2024-12-02 17:00:00"}, // Monday
		{"2024-12-06 12:00:00", "2024-12-06 07:00:00", "2024-12-06 17:00:00"}, // Friday
		{"2024-12-07 12:00:00", "2024-12-07 08:00:00", "2024-12-07 17:00:00"}, // Saturday
		{"2024-12-08 00:00:00", "2024-12-08 08:00:00", "2024-12-08 17:00:00"}, // Sunday
	}
	for _, tc := range tests {
		w := BusinessWindow(at(t, tc.date))
		if !w.Start.Equal(at(t, tc.wantOpen)) || !w.End.Equal(at(t, tc.wantClose)) {
			t.Fatalf("BusinessWindow(%s) = %v..%v, want %s..%s", tc.date, w.Start, w.End, tc.wantOpen, tc.wantClose)
		}
	}
}

func TestCheckBusinessHours(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr error
	}{
		{"weekday inside", "2024-12-02 07:00:00", "2024-12-02 07:30:00", nil},
		{"weekday ends at close", "2024-12-02 16:30:00", "2024-12-02 17:00:00", nil},
		{"weekday before open", "2024-12-02 06:30:00", "2024-12-02 07:00:00", ErrOutsideWeekdayHours},
		{"weekday after close", "2024-12-02 16:30:00", "2024-12-02 17:00:01", ErrOutsideWeekdayHours},
		{"weekend at seven", "2024-12-07 07:00:00", "2024-12-07 07:30:00", ErrOutsideWeekendHours},
		{"weekend inside", "2024-12-07 08:00:00", "2024-12-07 08:30:00", nil},
		{"weekend after close", "2024-12-08 16:00:00", "2024-12-08 17:30:00", ErrOutsideWeekendHours},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckBusinessHours(at(t, tc.start), at(t, tc.end))
			if err != tc.wantErr {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestBusinessRange(t *testing.T) {
	r, err := BusinessRange(at(t, "2024-12-07 00:00:00"), at(t, "2024-12-09 00:00:00"))
	if err != nil {
		t.Fatalf("BusinessRange error: %v", err)
	}
	if !r.Start.Equal(at(t, "2024-12-07 08:00:00")) || !r.End.Equal(at(t, "2024-12-09 17:00:00")) {
		t.Fatalf("range = %v..%v", r.Start, r.End)
	}

	if _, err := BusinessRange(at(t, "2024-12-09 00:00:00"), at(t, "2024-12-07 00:00:00")); err != ErrRangeReversed {
		t.Fatalf("err = %v, want %v", err, ErrRangeReversed)
	}
}
