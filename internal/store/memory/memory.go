// Package memory is an in-process implementation of the store interfaces. It
// enforces the same constraints as the Postgres schema and is used by tests and
// by the server when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

type state struct {
	doctors        map[int64]domain.Doctor
	services       map[int64]domain.Service
	links          map[int64][]int64
	appointments   map[int64]domain.Appointment
	unavailability map[int64]domain.Unavailability
	nextID         int64
}

func (s *state) clone() *state {
	out := &state{
		doctors:        make(map[int64]domain.Doctor, len(s.doctors)),
		services:       make(map[int64]domain.Service, len(s.services)),
		links:          make(map[int64][]int64, len(s.links)),
		appointments:   make(map[int64]domain.Appointment, len(s.appointments)),
		unavailability: make(map[int64]domain.Unavailability, len(s.unavailability)),
		nextID:         s.nextID,
	}
	for k, v := range s.doctors {
		out.doctors[k] = v
	}
	for k, v := range s.services {
		out.services[k] = v
	}
	for k, v := range s.links {
		out.links[k] = append([]int64(nil), v...)
	}
	for k, v := range s.appointments {
		out.appointments[k] = v
	}
	for k, v := range s.unavailability {
		out.unavailability[k] = v
	}
	return out
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store holds all tables behind one mutex. Transactions run on a copy of the
// tables that replaces the committed copy only when fn succeeds.
type Store struct {
	mu    sync.Mutex
	data  *state
	clock func() time.Time
}

func New() *Store {
	return &Store{
		data: &state{
			doctors:        map[int64]domain.Doctor{},
			services:       map[int64]domain.Service{},
			links:          map[int64][]int64{},
			appointments:   map[int64]domain.Appointment{},
			unavailability: map[int64]domain.Unavailability{},
		},
		clock: time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) now() time.Time {
	return domain.WallClock(s.clock())
}

func (s *Store) read(fn func(d *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

func (s *Store) write(fn func(d *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.data.clone()
	if err := fn(staged); err != nil {
		return err
	}
	s.data = staged
	return nil
}

func sortedByID[T any](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

// Doctors

func (s *Store) CreateDoctor(ctx context.Context, d domain.Doctor) (domain.Doctor, error) {
	err := s.write(func(st *state) error {
		d.ID = st.id()
		if d.CreatedAt.IsZero() {
			d.CreatedAt = s.now()
		}
		st.doctors[d.ID] = d
		return nil
	})
	return d, err
}

func (s *Store) GetDoctor(ctx context.Context, id int64) (domain.Doctor, error) {
	var (
		d  domain.Doctor
		ok bool
	)
	s.read(func(st *state) { d, ok = st.doctors[id] })
	if !ok {
		return domain.Doctor{}, store.ErrNotFound
	}
	return d, nil
}

func (s *Store) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	var out []domain.Doctor
	s.read(func(st *state) { out = sortedByID(st.doctors) })
	return out, nil
}

func (s *Store) SearchDoctors(ctx context.Context, terms []string) ([]domain.Doctor, error) {
	out := []domain.Doctor{}
	s.read(func(st *state) {
		for _, d := range sortedByID(st.doctors) {
			name := strings.ToLower(d.Name)
			match := true
			for _, term := range terms {
				if !strings.Contains(name, strings.ToLower(term)) {
					match = false
					break
				}
			}
			if match {
				out = append(out, d)
			}
		}
	})
	return out, nil
}

func (s *Store) UpdateDoctor(ctx context.Context, id int64, patch domain.DoctorPatch) (domain.Doctor, error) {
	var out domain.Doctor
	err := s.write(func(st *state) error {
		current, ok := st.doctors[id]
		if !ok {
			return store.ErrNotFound
		}
		out = patch.Apply(current)
		st.doctors[id] = out
		return nil
	})
	return out, err
}

func (s *Store) DeleteDoctor(ctx context.Context, id int64) error {
	return s.write(func(st *state) error {
		if _, ok := st.doctors[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.doctors, id)
		for aid, a := range st.appointments {
			if a.DoctorID == id {
				delete(st.appointments, aid)
			}
		}
		for uid, u := range st.unavailability {
			if u.DoctorID == id {
				delete(st.unavailability, uid)
			}
		}
		for sid, ids := range st.links {
			st.links[sid] = without(ids, id)
		}
		return nil
	})
}

func (s *Store) MissingDoctorIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var out []int64
	s.read(func(st *state) {
		seen := map[int64]bool{}
		for _, id := range ids {
			if _, ok := st.doctors[id]; !ok && !seen[id] {
				out = append(out, id)
			}
			seen[id] = true
		}
	})
	return out, nil
}

func without(ids []int64, drop int64) []int64 {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// Services

func (s *Store) CreateService(ctx context.Context, svc domain.Service, doctorIDs []int64) (domain.Service, error) {
	var id int64
	err := s.write(func(st *state) error {
		svc.ID = st.id()
		svc.Doctors = nil
		if svc.CreatedAt.IsZero() {
			svc.CreatedAt = s.now()
		}
		st.services[svc.ID] = svc
		id = svc.ID
		return setLinks(st, id, doctorIDs)
	})
	if err != nil {
		return domain.Service{}, err
	}
	return s.GetService(ctx, id)
}

// setLinks replaces the doctor links of serviceID.
func setLinks(st *state, serviceID int64, doctorIDs []int64) error {
	var ids []int64
	seen := map[int64]bool{}
	for _, id := range doctorIDs {
		if _, ok := st.doctors[id]; !ok {
			return store.ErrNotFound
		}
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	st.links[serviceID] = ids
	return nil
}

func (s *Store) GetService(ctx context.Context, id int64) (domain.Service, error) {
	var (
		svc domain.Service
		ok  bool
	)
	s.read(func(st *state) {
		svc, ok = st.services[id]
		if !ok {
			return
		}
		ids := append([]int64(nil), st.links[id]...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		svc.Doctors = make([]domain.Doctor, 0, len(ids))
		for _, did := range ids {
			svc.Doctors = append(svc.Doctors, st.doctors[did])
		}
	})
	if !ok {
		return domain.Service{}, store.ErrNotFound
	}
	return svc, nil
}

func (s *Store) ListServices(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	s.read(func(st *state) { out = sortedByID(st.services) })
	return out, nil
}

func (s *Store) UpdateService(ctx context.Context, id int64, patch domain.ServicePatch, doctorIDs []int64) (domain.Service, error) {
	err := s.write(func(st *state) error {
		current, ok := st.services[id]
		if !ok {
			return store.ErrNotFound
		}
		st.services[id] = patch.Apply(current)
		if doctorIDs == nil {
			return nil
		}
		return setLinks(st, id, doctorIDs)
	})
	if err != nil {
		return domain.Service{}, err
	}
	return s.GetService(ctx, id)
}

func (s *Store) DeleteService(ctx context.Context, id int64) error {
	return s.write(func(st *state) error {
		if _, ok := st.services[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.services, id)
		delete(st.links, id)
		return nil
	})
}
