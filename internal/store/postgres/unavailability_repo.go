package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"clinic/backend/internal/domain"
)

type UnavailabilityRepo struct {
	db *bun.DB
}

func NewUnavailabilityRepo(db *bun.DB) *UnavailabilityRepo {
	return &UnavailabilityRepo{db: db}
}

func (r *UnavailabilityRepo) CreateUnavailability(ctx context.Context, u domain.Unavailability) (domain.Unavailability, error) {
	u.ID = 0
	if _, err := r.db.NewInsert().Model(&u).Returning("*").Exec(ctx); err != nil {
		return domain.Unavailability{}, translateError(err)
	}
	return u, nil
}

func (r *UnavailabilityRepo) GetUnavailability(ctx context.Context, id int64) (domain.Unavailability, error) {
	var u domain.Unavailability
	if err := r.db.NewSelect().Model(&u).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return domain.Unavailability{}, translateError(err)
	}
	return u, nil
}

func (r *UnavailabilityRepo) ListUnavailability(ctx context.Context) ([]domain.Unavailability, error) {
	rows := []domain.Unavailability{}
	if err := r.db.NewSelect().Model(&rows).OrderExpr("starts_at ASC, id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *UnavailabilityRepo) UpdateUnavailability(ctx context.Context, u domain.Unavailability) (domain.Unavailability, error) {
	res, err := r.db.NewUpdate().
		Model(&u).
		WherePK().
		ExcludeColumn("id", "created_at").
		Exec(ctx)
	if err != nil {
		return domain.Unavailability{}, translateError(err)
	}
	if err := requireAffected(res); err != nil {
		return domain.Unavailability{}, err
	}
	return u, nil
}

func (r *UnavailabilityRepo) DeleteUnavailability(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*domain.Unavailability)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
