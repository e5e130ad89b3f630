// Package directory manages the doctors of the clinic and the services they offer.
package directory

import (
	"context"
	"errors"
	"strings"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service"
	"clinic/backend/internal/store"
)

const (
	msgDoctorNotFound = "Doctor not found"
	msgNoFields       = "No fields to update"
	msgSearchEmpty    = "Search name is required"
)

type Doctors struct {
	repo store.DoctorRepository
}

func NewDoctors(repo store.DoctorRepository) *Doctors {
	return &Doctors{repo: repo}
}

func (s *Doctors) Create(ctx context.Context, d domain.Doctor) (domain.Doctor, error) {
	d.ID = 0
	return s.repo.CreateDoctor(ctx, d)
}

func (s *Doctors) Get(ctx context.Context, id int64) (domain.Doctor, error) {
	d, err := s.repo.GetDoctor(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Doctor{}, service.NotFound(msgDoctorNotFound)
	}
	return d, err
}

func (s *Doctors) List(ctx context.Context) ([]domain.Doctor, error) {
	return s.repo.ListDoctors(ctx)
}

// Search returns the first doctor whose name contains every whitespace
// separated term of name.
func (s *Doctors) Search(ctx context.Context, name string) (domain.Doctor, error) {
	terms := strings.Fields(name)
	if len(terms) == 0 {
		return domain.Doctor{}, service.Invalid(msgSearchEmpty)
	}
	found, err := s.repo.SearchDoctors(ctx, terms)
	if err != nil {
		return domain.Doctor{}, err
	}
	if len(found) == 0 {
		return domain.Doctor{}, service.NotFound(msgDoctorNotFound)
	}
	return found[0], nil
}

func (s *Doctors) Update(ctx context.Context, id int64, patch domain.DoctorPatch) (domain.Doctor, error) {
	if patch.Empty() {
		return domain.Doctor{}, service.Invalid(msgNoFields)
	}
	d, err := s.repo.UpdateDoctor(ctx, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Doctor{}, service.NotFound(msgDoctorNotFound)
	}
	return d, err
}

func (s *Doctors) Delete(ctx context.Context, id int64) (int64, error) {
	err := s.repo.DeleteDoctor(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return 0, service.NotFound(msgDoctorNotFound)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}
