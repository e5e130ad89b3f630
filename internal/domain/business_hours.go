package domain

import (
	"errors"
	"time"
)

const (
	WeekdayOpen = 7 * time.Hour
	WeekendOpen = 8 * time.Hour
	ClosingTime = 17 * time.Hour
)

var (
	ErrOutsideWeekdayHours = errors.New("Appointments can only be scheduled between 7:00 AM and 5:00 PM from Monday to Friday")
	ErrOutsideWeekendHours = errors.New("Appointments can only be scheduled between 8:00 AM and 5:00 PM on Saturday and Sunday")
	ErrRangeReversed       = errors.New("endDate must not be before startDate")
)

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// BusinessWindow returns the bookable window of the calendar day containing date.
func BusinessWindow(date time.Time) Interval {
	day := Midnight(date)
	open := WeekdayOpen
	if IsWeekend(day) {
		open = WeekendOpen
	}
	return Interval{Start: day.Add(open), End: day.Add(ClosingTime)}
}

// CheckBusinessHours rejects a booking starting before the day's opening time or
// ending after closing time. Both ends are judged against the start's day.
func CheckBusinessHours(start, end time.Time) error {
	if !BusinessWindow(start).Contains(Interval{Start: start, End: end}) {
		if IsWeekend(start) {
			return ErrOutsideWeekendHours
		}
		return ErrOutsideWeekdayHours
	}
	return nil
}

// BusinessRange spans from the opening time of startDate to the closing time of
// endDate.
func BusinessRange(startDate, endDate time.Time) (Interval, error) {
	if Midnight(endDate).Before(Midnight(startDate)) {
		return Interval{}, ErrRangeReversed
	}
	return Interval{
		Start: BusinessWindow(startDate).Start,
		End:   BusinessWindow(endDate).End,
	}, nil
}
