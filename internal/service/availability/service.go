// Package availability lists a doctor's free and busy time over a date range.
package availability

import (
	"context"
	"errors"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service"
	"clinic/backend/internal/store"
)

type Service struct {
	repo            store.AppointmentRepository
	expandRecurring bool
}

type Option func(*Service)

func WithRecurringExpansion(enabled bool) Option {
	return func(s *Service) { s.expandRecurring = enabled }
}

func NewService(repo store.AppointmentRepository, opts ...Option) *Service {
	s := &Service{repo: repo, expandRecurring: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List partitions [startDate open, endDate 17:00) into alternating free and
// busy slots ordered by start. Dates are YYYY-MM-DD.
func (s *Service) List(ctx context.Context, doctorID int64, startDate, endDate string) ([]domain.Slot, error) {
	from, err := domain.ParseDate(startDate)
	if err != nil {
		return nil, service.Invalid("Invalid startDate")
	}
	to, err := domain.ParseDate(endDate)
	if err != nil {
		return nil, service.Invalid("Invalid endDate")
	}
	bounds, err := domain.BusinessRange(from, to)
	if err != nil {
		return nil, service.Invalid(err.Error())
	}

	var busy []domain.BusyInterval
	err = s.repo.InReadTransaction(ctx, func(ctx context.Context, tx store.SchedulingTx) error {
		if _, err := tx.FindDoctorByID(ctx, doctorID); err != nil {
			return err
		}

		appts, err := tx.FetchAppointmentsInRange(ctx, doctorID, bounds)
		if err != nil {
			return err
		}
		once, err := tx.FetchUnavailabilityInRange(ctx, doctorID, bounds)
		if err != nil {
			return err
		}
		rows := once
		if s.expandRecurring {
			recurring, err := tx.ListRecurringUnavailability(ctx, doctorID, bounds.End)
			if err != nil {
				return err
			}
			rows = append(rows, recurring...)
		}

		busy = append(domain.AppointmentBusy(appts), domain.UnavailabilityBusy(rows, bounds)...)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, service.NotFound("Doctor not found")
	}
	if err != nil {
		return nil, err
	}

	return domain.BuildSlots(bounds, busy), nil
}
