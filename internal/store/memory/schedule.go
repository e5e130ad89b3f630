package memory

import (
	"context"
	"sort"
	"time"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

func (s *Store) GetAppointment(ctx context.Context, id int64) (domain.Appointment, error) {
	var (
		a  domain.Appointment
		ok bool
	)
	s.read(func(st *state) { a, ok = st.appointments[id] })
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	var out []domain.Appointment
	s.read(func(st *state) { out = sortedByID(st.appointments) })
	sortAppointments(out)
	return out, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id int64) error {
	return s.write(func(st *state) error {
		if _, ok := st.appointments[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.appointments, id)
		return nil
	})
}

// InDoctorTransaction holds the store-wide lock for the duration of fn, so
// bookings for every doctor are serialized.
func (s *Store) InDoctorTransaction(ctx context.Context, doctorID int64, fn func(ctx context.Context, tx store.SchedulingTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(func(st *state) error {
		return fn(ctx, &schedulingTx{st: st, now: s.now})
	})
}

func (s *Store) InReadTransaction(ctx context.Context, fn func(ctx context.Context, tx store.SchedulingTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	s.read(func(st *state) {
		err = fn(ctx, &schedulingTx{st: st, now: s.now, readOnly: true})
	})
	return err
}

// Unavailability

func (s *Store) CreateUnavailability(ctx context.Context, u domain.Unavailability) (domain.Unavailability, error) {
	err := s.write(func(st *state) error {
		if _, ok := st.doctors[u.DoctorID]; !ok {
			return store.ErrNotFound
		}
		u.ID = st.id()
		if u.CreatedAt.IsZero() {
			u.CreatedAt = s.now()
		}
		st.unavailability[u.ID] = u
		return nil
	})
	if err != nil {
		return domain.Unavailability{}, err
	}
	return u, nil
}

func (s *Store) GetUnavailability(ctx context.Context, id int64) (domain.Unavailability, error) {
	var (
		u  domain.Unavailability
		ok bool
	)
	s.read(func(st *state) { u, ok = st.unavailability[id] })
	if !ok {
		return domain.Unavailability{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListUnavailability(ctx context.Context) ([]domain.Unavailability, error) {
	var out []domain.Unavailability
	s.read(func(st *state) { out = sortedByID(st.unavailability) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (s *Store) UpdateUnavailability(ctx context.Context, u domain.Unavailability) (domain.Unavailability, error) {
	err := s.write(func(st *state) error {
		current, ok := st.unavailability[u.ID]
		if !ok {
			return store.ErrNotFound
		}
		if _, ok := st.doctors[u.DoctorID]; !ok {
			return store.ErrNotFound
		}
		u.CreatedAt = current.CreatedAt
		st.unavailability[u.ID] = u
		return nil
	})
	if err != nil {
		return domain.Unavailability{}, err
	}
	return u, nil
}

func (s *Store) DeleteUnavailability(ctx context.Context, id int64) error {
	return s.write(func(st *state) error {
		if _, ok := st.unavailability[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.unavailability, id)
		return nil
	})
}

type schedulingTx struct {
	st       *state
	now      func() time.Time
	readOnly bool
}

func (t *schedulingTx) FindDoctorByID(ctx context.Context, id int64) (domain.Doctor, error) {
	d, ok := t.st.doctors[id]
	if !ok {
		return domain.Doctor{}, store.ErrNotFound
	}
	return d, nil
}

// GetAppointmentForUpdate needs no row lock: transactions already run one at
// a time.
func (t *schedulingTx) GetAppointmentForUpdate(ctx context.Context, id int64) (domain.Appointment, error) {
	a, ok := t.st.appointments[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (t *schedulingTx) CountOverlappingAppointments(ctx context.Context, doctorID int64, span domain.Interval, excludeID int64) (int, error) {
	n := 0
	for _, a := range t.st.appointments {
		if a.DoctorID != doctorID || !a.Blocking() || (excludeID != 0 && a.ID == excludeID) {
			continue
		}
		if a.Interval().Overlaps(span) {
			n++
		}
	}
	return n, nil
}

func (t *schedulingTx) CountOverlappingUnavailability(ctx context.Context, doctorID int64, span domain.Interval) (int, error) {
	n := 0
	for _, u := range t.st.unavailability {
		if u.DoctorID == doctorID && !u.Recurring() && u.Interval().Overlaps(span) {
			n++
		}
	}
	return n, nil
}

func (t *schedulingTx) ListRecurringUnavailability(ctx context.Context, doctorID int64, before time.Time) ([]domain.Unavailability, error) {
	var out []domain.Unavailability
	for _, u := range sortedByID(t.st.unavailability) {
		if u.DoctorID == doctorID && u.Recurring() && u.StartsAt.Before(before) {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

// checkAppointment enforces the foreign key, ordering and exclusion
// constraints of the appointments table.
func (t *schedulingTx) checkAppointment(a domain.Appointment) error {
	if _, ok := t.st.doctors[a.DoctorID]; !ok {
		return store.ErrNotFound
	}
	if !a.Interval().Valid() {
		return domain.ErrEmptyInterval
	}
	if !a.Blocking() {
		return nil
	}
	for _, other := range t.st.appointments {
		if other.ID == a.ID || other.DoctorID != a.DoctorID || !other.Blocking() {
			continue
		}
		if other.Interval().Overlaps(a.Interval()) {
			return store.ErrConflict
		}
	}
	return nil
}

func (t *schedulingTx) InsertAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	if t.readOnly {
		return domain.Appointment{}, store.ErrReadOnly
	}
	a.ID = 0
	if a.Status == "" {
		a.Status = domain.StatusBooked
	}
	if err := t.checkAppointment(a); err != nil {
		return domain.Appointment{}, err
	}
	a.ID = t.st.id()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = t.now()
	}
	t.st.appointments[a.ID] = a
	return a, nil
}

func (t *schedulingTx) UpdateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	if t.readOnly {
		return domain.Appointment{}, store.ErrReadOnly
	}
	current, ok := t.st.appointments[a.ID]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	if err := t.checkAppointment(a); err != nil {
		return domain.Appointment{}, err
	}
	a.CreatedAt = current.CreatedAt
	t.st.appointments[a.ID] = a
	return a, nil
}

func (t *schedulingTx) FetchAppointmentsInRange(ctx context.Context, doctorID int64, span domain.Interval) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range t.st.appointments {
		if a.DoctorID == doctorID && a.Blocking() && a.Interval().Overlaps(span) {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (t *schedulingTx) FetchUnavailabilityInRange(ctx context.Context, doctorID int64, span domain.Interval) ([]domain.Unavailability, error) {
	var out []domain.Unavailability
	for _, u := range t.st.unavailability {
		if u.DoctorID == doctorID && !u.Recurring() && u.Interval().Overlaps(span) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out, nil
}

func sortAppointments(xs []domain.Appointment) {
	sort.Slice(xs, func(i, j int) bool {
		if xs[i].StartsAt.Equal(xs[j].StartsAt) {
			return xs[i].ID < xs[j].ID
		}
		return xs[i].StartsAt.Before(xs[j].StartsAt)
	})
}
