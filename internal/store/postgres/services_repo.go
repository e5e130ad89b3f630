package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"clinic/backend/internal/domain"
)

type ServiceRepo struct {
	db *bun.DB
}

func NewServiceRepo(db *bun.DB) *ServiceRepo {
	return &ServiceRepo{db: db}
}

func (r *ServiceRepo) CreateService(ctx context.Context, s domain.Service, doctorIDs []int64) (domain.Service, error) {
	var id int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		m := domain.Service{Title: s.Title, Context: s.Context}
		if _, err := tx.NewInsert().Model(&m).Returning("*").Exec(ctx); err != nil {
			return translateError(err)
		}
		id = m.ID
		return linkDoctors(ctx, tx, id, doctorIDs)
	})
	if err != nil {
		return domain.Service{}, err
	}
	return r.GetService(ctx, id)
}

func (r *ServiceRepo) GetService(ctx context.Context, id int64) (domain.Service, error) {
	return findService(ctx, r.db, id)
}

func findService(ctx context.Context, db bun.IDB, id int64) (domain.Service, error) {
	var s domain.Service
	err := db.NewSelect().
		Model(&s).
		Relation("Doctors", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("doctor.id ASC")
		}).
		Where("service.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Service{}, translateError(err)
	}
	if s.Doctors == nil {
		s.Doctors = []domain.Doctor{}
	}
	return s, nil
}

func (r *ServiceRepo) ListServices(ctx context.Context) ([]domain.Service, error) {
	rows := []domain.Service{}
	if err := r.db.NewSelect().Model(&rows).OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ServiceRepo) UpdateService(ctx context.Context, id int64, patch domain.ServicePatch, doctorIDs []int64) (domain.Service, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := findService(ctx, tx, id)
		if err != nil {
			return err
		}
		if !patch.Empty() {
			next := patch.Apply(current)
			next.Doctors = nil
			if _, err := tx.NewUpdate().Model(&next).WherePK().ExcludeColumn("created_at").Exec(ctx); err != nil {
				return translateError(err)
			}
		}
		if doctorIDs == nil {
			return nil
		}
		if _, err := tx.NewDelete().
			Model((*domain.ServiceDoctor)(nil)).
			Where("service_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		return linkDoctors(ctx, tx, id, doctorIDs)
	})
	if err != nil {
		return domain.Service{}, err
	}
	return r.GetService(ctx, id)
}

func (r *ServiceRepo) DeleteService(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*domain.Service)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func linkDoctors(ctx context.Context, tx bun.Tx, serviceID int64, doctorIDs []int64) error {
	if len(doctorIDs) == 0 {
		return nil
	}
	links := make([]domain.ServiceDoctor, 0, len(doctorIDs))
	seen := make(map[int64]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, domain.ServiceDoctor{ServiceID: serviceID, DoctorID: id})
	}
	_, err := tx.NewInsert().Model(&links).Exec(ctx)
	return translateError(err)
}
