package appointments

import (
	"context"
	"errors"
	"time"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/lock"
	"clinic/backend/internal/service"
	"clinic/backend/internal/store"
)

const (
	msgNotFound     = "Appointment not found"
	msgNoFields     = "No fields to update"
	msgPast         = "Appointment date cannot be in the past"
	msgEndAfter     = "End time must be greater than start time"
	msgBadSchedule  = "Invalid appointment date or time"
	msgBadStatus    = "Invalid appointment status"
	msgDoctorAbsent = "Doctor with id %d not found"
)

type Service struct {
	repo      store.AppointmentRepository
	locker    lock.Locker
	now       func() time.Time
	conflicts ConflictChecker
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithRecurringExpansion(enabled bool) Option {
	return func(s *Service) { s.conflicts.ExpandRecurring = enabled }
}

func NewService(repo store.AppointmentRepository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		locker:    lock.Noop{},
		now:       time.Now,
		conflicts: ConflictChecker{ExpandRecurring: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	DoctorID    int64
	PatientName string
	Email       string
	Reason      *string
	Date        string
	StartTime   string
	EndTime     string
	Status      domain.AppointmentStatus
}

// Patch carries the fields of a partial update; nil fields are left unchanged.
type Patch struct {
	DoctorID    *int64
	PatientName *string
	Email       *string
	Reason      *string
	Date        *string
	StartTime   *string
	EndTime     *string
	Status      *domain.AppointmentStatus
}

func (p Patch) Empty() bool {
	return p.DoctorID == nil && p.PatientName == nil && p.Email == nil && p.Reason == nil &&
		p.Date == nil && p.StartTime == nil && p.EndTime == nil && p.Status == nil
}

func (p Patch) reschedules() bool {
	return p.DoctorID != nil || p.Date != nil || p.StartTime != nil || p.EndTime != nil
}

func (s *Service) wallNow() time.Time {
	return domain.WallClock(s.now())
}

func parseSchedule(date, start, end string) (domain.Interval, error) {
	startsAt, err := domain.CombineDateTime(date, start)
	if err != nil {
		return domain.Interval{}, service.Invalid(msgBadSchedule)
	}
	endsAt, err := domain.CombineDateTime(date, end)
	if err != nil {
		return domain.Interval{}, service.Invalid(msgBadSchedule)
	}
	return domain.Interval{Start: startsAt, End: endsAt}, nil
}

// Create books a new appointment. Checks run in a fixed order and the first
// failure is returned.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	span, err := parseSchedule(in.Date, in.StartTime, in.EndTime)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := domain.CheckBusinessHours(span.Start, span.End); err != nil {
		return domain.Appointment{}, service.Invalid(err.Error())
	}

	status := in.Status
	if status == "" {
		status = domain.StatusBooked
	}
	if !status.Valid() {
		return domain.Appointment{}, service.Invalid(msgBadStatus)
	}

	appt := domain.Appointment{
		DoctorID:    in.DoctorID,
		PatientName: in.PatientName,
		Email:       in.Email,
		Reason:      in.Reason,
		StartsAt:    span.Start,
		EndsAt:      span.End,
		Status:      status,
	}

	var out domain.Appointment
	err = s.book(ctx, in.DoctorID, func(ctx context.Context, tx store.SchedulingTx) error {
		if err := s.validateBooking(ctx, tx, appt, 0); err != nil {
			return err
		}
		created, err := tx.InsertAppointment(ctx, appt)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// validateBooking runs the doctor, past, ordering and conflict checks for a.
func (s *Service) validateBooking(ctx context.Context, tx store.SchedulingTx, a domain.Appointment, excludeID int64) error {
	if err := requireDoctor(ctx, tx, a.DoctorID); err != nil {
		return err
	}
	if !a.StartsAt.After(s.wallNow()) {
		return service.Invalid(msgPast)
	}
	if !a.EndsAt.After(a.StartsAt) {
		return service.Invalid(msgEndAfter)
	}
	if !a.Blocking() {
		return nil
	}
	n, err := s.conflicts.Count(ctx, tx, a.DoctorID, a.Interval(), excludeID)
	if err != nil {
		return err
	}
	if n > 0 {
		return service.Conflict()
	}
	return nil
}

func requireDoctor(ctx context.Context, tx store.SchedulingTx, doctorID int64) error {
	_, err := tx.FindDoctorByID(ctx, doctorID)
	if errors.Is(err, store.ErrNotFound) {
		return service.Invalidf(msgDoctorAbsent, doctorID)
	}
	return err
}

// book runs fn under the distributed doctor lock and the per-doctor
// transaction.
func (s *Service) book(ctx context.Context, doctorID int64, fn func(ctx context.Context, tx store.SchedulingTx) error) error {
	err := s.locker.WithDoctorLock(ctx, doctorID, func(ctx context.Context) error {
		return s.repo.InDoctorTransaction(ctx, doctorID, fn)
	})
	return service.TranslateBookingError(err)
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Appointment, error) {
	a, err := s.repo.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Appointment{}, service.NotFound(msgNotFound)
	}
	return a, err
}

func (s *Service) List(ctx context.Context) ([]domain.Appointment, error) {
	return s.repo.ListAppointments(ctx)
}

// Delete removes an appointment and returns its id.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	err := s.repo.DeleteAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return 0, service.NotFound(msgNotFound)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update applies p and, when it moves the appointment or brings a cancelled one
// back, re-runs every booking check except against the appointment itself.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (domain.Appointment, error) {
	return s.update(ctx, id, p, true)
}

// ForceUpdate applies p without business-hours, past or conflict checks. The
// end must still follow the start and storage constraints still hold.
func (s *Service) ForceUpdate(ctx context.Context, id int64, p Patch) (domain.Appointment, error) {
	return s.update(ctx, id, p, false)
}

// errDoctorMoved reports that the appointment changed doctor between the
// unlocked read and the locked one.
var errDoctorMoved = errors.New("appointment moved to another doctor")

const maxUpdateAttempts = 3

func (s *Service) update(ctx context.Context, id int64, p Patch, validate bool) (domain.Appointment, error) {
	if p.Empty() {
		return domain.Appointment{}, service.Invalid(msgNoFields)
	}

	for attempt := 1; ; attempt++ {
		doctorID, err := s.targetDoctor(ctx, id, p)
		if err != nil {
			return domain.Appointment{}, err
		}
		out, err := s.updateLocked(ctx, doctorID, id, p, validate)
		if errors.Is(err, errDoctorMoved) && attempt < maxUpdateAttempts {
			continue
		}
		if errors.Is(err, errDoctorMoved) {
			return domain.Appointment{}, service.Conflict()
		}
		return out, err
	}
}

// targetDoctor is the doctor whose schedule the patched appointment lands on.
func (s *Service) targetDoctor(ctx context.Context, id int64, p Patch) (int64, error) {
	if p.DoctorID != nil {
		return *p.DoctorID, nil
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return current.DoctorID, nil
}

// updateLocked reads, patches and writes the appointment inside the doctor
// transaction so concurrent patches to one appointment apply in turn.
func (s *Service) updateLocked(ctx context.Context, doctorID, id int64, p Patch, validate bool) (domain.Appointment, error) {
	var out domain.Appointment
	err := s.book(ctx, doctorID, func(ctx context.Context, tx store.SchedulingTx) error {
		current, err := tx.GetAppointmentForUpdate(ctx, id)
		if err != nil {
			return err
		}
		next, err := applyPatch(current, p)
		if err != nil {
			return err
		}
		if next.DoctorID != doctorID {
			return errDoctorMoved
		}

		reactivated := !current.Blocking() && next.Blocking()
		recheck := validate && next.Blocking() && (p.reschedules() || reactivated)

		if recheck {
			if err := domain.CheckBusinessHours(next.StartsAt, next.EndsAt); err != nil {
				return service.Invalid(err.Error())
			}
			if err := s.validateBooking(ctx, tx, next, id); err != nil {
				return err
			}
		} else {
			if !next.EndsAt.After(next.StartsAt) {
				return service.Invalid(msgEndAfter)
			}
			if p.DoctorID != nil {
				if err := requireDoctor(ctx, tx, next.DoctorID); err != nil {
					return err
				}
			}
		}

		updated, err := tx.UpdateAppointment(ctx, next)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Appointment{}, service.NotFound(msgNotFound)
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func applyPatch(a domain.Appointment, p Patch) (domain.Appointment, error) {
	if p.DoctorID != nil {
		a.DoctorID = *p.DoctorID
	}
	if p.PatientName != nil {
		a.PatientName = *p.PatientName
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Reason != nil {
		a.Reason = p.Reason
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return domain.Appointment{}, service.Invalid(msgBadStatus)
		}
		a.Status = *p.Status
	}

	if p.Date != nil || p.StartTime != nil || p.EndTime != nil {
		date, start, end := a.Date(), a.StartTime(), a.EndTime()
		if p.Date != nil {
			date = *p.Date
		}
		if p.StartTime != nil {
			start = *p.StartTime
		}
		if p.EndTime != nil {
			end = *p.EndTime
		}
		span, err := parseSchedule(date, start, end)
		if err != nil {
			return domain.Appointment{}, err
		}
		a.StartsAt, a.EndsAt = span.Start, span.End
	}
	return a, nil
}
