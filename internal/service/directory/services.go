package directory

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service"
	"clinic/backend/internal/store"
)

const (
	msgServiceNotFound   = "Service not found"
	msgServiceNotFoundID = "Service not found for id %d"
	msgInvalidDoctorIDs  = "Invalid doctorIds: %s"
)

type Services struct {
	repo    store.ServiceRepository
	doctors store.DoctorRepository
}

func NewServices(repo store.ServiceRepository, doctors store.DoctorRepository) *Services {
	return &Services{repo: repo, doctors: doctors}
}

func (s *Services) checkDoctors(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.doctors.MissingDoctorIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	parts := make([]string, len(missing))
	for i, id := range missing {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return service.Invalidf(msgInvalidDoctorIDs, strings.Join(parts, ", "))
}

func (s *Services) Create(ctx context.Context, svc domain.Service, doctorIDs []int64) (domain.Service, error) {
	if err := s.checkDoctors(ctx, doctorIDs); err != nil {
		return domain.Service{}, err
	}
	svc.ID = 0
	svc.Doctors = nil
	out, err := s.repo.CreateService(ctx, svc, doctorIDs)
	if errors.Is(err, store.ErrNotFound) {
		// a doctor was removed after the check
		return domain.Service{}, s.raceError(ctx, doctorIDs, err)
	}
	return out, err
}

func (s *Services) Get(ctx context.Context, id int64) (domain.Service, error) {
	svc, err := s.repo.GetService(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Service{}, service.NotFound(msgServiceNotFound)
	}
	return svc, err
}

func (s *Services) List(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListServices(ctx)
}

// Update patches the service fields. A non-nil doctorIDs replaces the linked
// doctors, an empty one unlinks them all.
func (s *Services) Update(ctx context.Context, id int64, patch domain.ServicePatch, doctorIDs []int64) (domain.Service, error) {
	if patch.Empty() && doctorIDs == nil {
		return domain.Service{}, service.Invalid(msgNoFields)
	}
	if err := s.checkDoctors(ctx, doctorIDs); err != nil {
		return domain.Service{}, err
	}
	out, err := s.repo.UpdateService(ctx, id, patch, doctorIDs)
	if errors.Is(err, store.ErrNotFound) {
		if _, getErr := s.repo.GetService(ctx, id); errors.Is(getErr, store.ErrNotFound) {
			return domain.Service{}, service.NotFoundf(msgServiceNotFoundID, id)
		}
		return domain.Service{}, s.raceError(ctx, doctorIDs, err)
	}
	return out, err
}

func (s *Services) raceError(ctx context.Context, doctorIDs []int64, err error) error {
	if checkErr := s.checkDoctors(ctx, doctorIDs); checkErr != nil {
		return checkErr
	}
	return err
}

func (s *Services) Delete(ctx context.Context, id int64) (int64, error) {
	err := s.repo.DeleteService(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return 0, service.NotFoundf(msgServiceNotFoundID, id)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}
