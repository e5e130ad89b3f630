// Package unavailability manages the windows in which a doctor cannot be booked.
package unavailability

import (
	"context"
	"errors"
	"time"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service"
	"clinic/backend/internal/store"
)

const (
	msgNotFound     = "Unavailability not found"
	msgNoFields     = "No fields to update"
	msgFutureStart  = "Start date must be in the future"
	msgEndAfter     = "End date must be after start date"
	msgDoctorAbsent = "Doctor not found for id: %d"
	msgBadStart     = "Invalid start date or time"
	msgBadEnd       = "Invalid end date or time"
	msgBadFrequency = "Invalid frequency"
)

type Service struct {
	repo    store.UnavailabilityRepository
	doctors store.DoctorRepository
	now     func() time.Time
}

type Option func(*Service)

// WithClock replaces the time source used for the future-start rule.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo store.UnavailabilityRepository, doctors store.DoctorRepository, opts ...Option) *Service {
	s := &Service{repo: repo, doctors: doctors, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	DoctorID  int64
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
	Frequency domain.Frequency
	Reason    *string
}

type Patch struct {
	DoctorID  *int64
	StartDate *string
	StartTime *string
	EndDate   *string
	EndTime   *string
	Frequency *domain.Frequency
	Reason    *string
}

func (p Patch) Empty() bool {
	return p.DoctorID == nil && p.StartDate == nil && p.StartTime == nil &&
		p.EndDate == nil && p.EndTime == nil && p.Frequency == nil && p.Reason == nil
}

func (p Patch) movesStart() bool {
	return p.StartDate != nil || p.StartTime != nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Unavailability, error) {
	start, err := domain.CombineDateTime(in.StartDate, orDefault(in.StartTime, domain.DefaultDayStart))
	if err != nil {
		return domain.Unavailability{}, service.Invalid(msgBadStart)
	}
	end, err := domain.CombineDateTime(in.EndDate, orDefault(in.EndTime, domain.DefaultDayEnd))
	if err != nil {
		return domain.Unavailability{}, service.Invalid(msgBadEnd)
	}
	if !start.After(domain.WallClock(s.now())) {
		return domain.Unavailability{}, service.Invalid(msgFutureStart)
	}
	span, err := domain.NewInterval(start, end)
	if err != nil {
		return domain.Unavailability{}, service.Invalid(msgEndAfter)
	}
	if !in.Frequency.Valid() {
		return domain.Unavailability{}, service.Invalid(msgBadFrequency)
	}

	out, err := s.repo.CreateUnavailability(ctx, domain.Unavailability{
		DoctorID:  in.DoctorID,
		StartsAt:  span.Start,
		EndsAt:    span.End,
		Frequency: in.Frequency,
		Reason:    in.Reason,
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Unavailability{}, service.Invalidf(msgDoctorAbsent, in.DoctorID)
	}
	return out, err
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Unavailability, error) {
	u, err := s.repo.GetUnavailability(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Unavailability{}, service.NotFound(msgNotFound)
	}
	return u, err
}

func (s *Service) List(ctx context.Context) ([]domain.Unavailability, error) {
	return s.repo.ListUnavailability(ctx)
}

// Update merges p into the stored row. A moved start must still be in the
// future and the merged end must follow the merged start.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (domain.Unavailability, error) {
	if p.Empty() {
		return domain.Unavailability{}, service.Invalid(msgNoFields)
	}
	if p.DoctorID != nil {
		if _, err := s.doctors.GetDoctor(ctx, *p.DoctorID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Unavailability{}, service.Invalidf(msgDoctorAbsent, *p.DoctorID)
			}
			return domain.Unavailability{}, err
		}
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return domain.Unavailability{}, err
	}
	next := current

	if p.DoctorID != nil {
		next.DoctorID = *p.DoctorID
	}
	if p.Frequency != nil {
		if !p.Frequency.Valid() {
			return domain.Unavailability{}, service.Invalid(msgBadFrequency)
		}
		next.Frequency = *p.Frequency
	}
	if p.Reason != nil {
		next.Reason = p.Reason
	}

	if p.movesStart() {
		date, clock := domain.FormatDate(current.StartsAt), domain.FormatClock(current.StartsAt)
		if p.StartDate != nil {
			date = *p.StartDate
		}
		if p.StartTime != nil {
			clock = *p.StartTime
		}
		start, err := domain.CombineDateTime(date, clock)
		if err != nil {
			return domain.Unavailability{}, service.Invalid(msgBadStart)
		}
		if !start.After(domain.WallClock(s.now())) {
			return domain.Unavailability{}, service.Invalid(msgFutureStart)
		}
		next.StartsAt = start
	}
	if p.EndDate != nil || p.EndTime != nil {
		date, clock := domain.FormatDate(current.EndsAt), domain.FormatClock(current.EndsAt)
		if p.EndDate != nil {
			date = *p.EndDate
		}
		if p.EndTime != nil {
			clock = *p.EndTime
		}
		end, err := domain.CombineDateTime(date, clock)
		if err != nil {
			return domain.Unavailability{}, service.Invalid(msgBadEnd)
		}
		next.EndsAt = end
	}
	if _, err := domain.NewInterval(next.StartsAt, next.EndsAt); err != nil {
		return domain.Unavailability{}, service.Invalid(msgEndAfter)
	}

	out, err := s.repo.UpdateUnavailability(ctx, next)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Unavailability{}, service.NotFound(msgNotFound)
	}
	return out, err
}

func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	err := s.repo.DeleteUnavailability(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return 0, service.NotFound(msgNotFound)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}
