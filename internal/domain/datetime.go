package domain

import (
	"errors"
	"time"
)

// Layouts for the naive wall-clock values exchanged with clients.
const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04:05"
	DateTimeLayout = DateLayout + " " + ClockLayout
)

const (
	DefaultDayStart = "00:00:00"
	DefaultDayEnd   = "23:59:59"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidClock    = errors.New("invalid time")
	ErrInvalidDateTime = errors.New("invalid datetime")
)

// Wall-clock values are carried as time.Time in UTC and are never converted
// between locations.

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, ErrInvalidClock
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// CombineDateTime joins a YYYY-MM-DD date and an HH:MM:SS time.
func CombineDateTime(date, clock string) (time.Time, error) {
	t, err := time.Parse(DateTimeLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}
	return t, nil
}

func FormatDate(t time.Time) string     { return t.Format(DateLayout) }
func FormatClock(t time.Time) string    { return t.Format(ClockLayout) }
func FormatDateTime(t time.Time) string { return t.Format(DateTimeLayout) }

// WallClock drops the location of t, keeping the local reading of the clock.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// Midnight returns the start of the calendar day containing t.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
