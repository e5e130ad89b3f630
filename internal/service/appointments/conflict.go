package appointments

import (
	"context"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

// ConflictChecker counts what keeps a doctor from taking a candidate booking.
// It must run inside the booking transaction.
type ConflictChecker struct {
	ExpandRecurring bool
}

// Count sums overlapping non-cancelled appointments, overlapping one-off
// unavailability and, when expansion is on, recurring unavailability rows with
// an occurrence overlapping candidate. excludeID leaves one appointment out.
func (c ConflictChecker) Count(ctx context.Context, tx store.SchedulingTx, doctorID int64, candidate domain.Interval, excludeID int64) (int, error) {
	appts, err := tx.CountOverlappingAppointments(ctx, doctorID, candidate, excludeID)
	if err != nil {
		return 0, err
	}
	once, err := tx.CountOverlappingUnavailability(ctx, doctorID, candidate)
	if err != nil {
		return 0, err
	}
	total := appts + once

	if !c.ExpandRecurring {
		return total, nil
	}
	rows, err := tx.ListRecurringUnavailability(ctx, doctorID, candidate.End)
	if err != nil {
		return 0, err
	}
	for _, u := range rows {
		if domain.OccursWithin(u, candidate) {
			total++
		}
	}
	return total, nil
}
