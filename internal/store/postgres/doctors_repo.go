package postgres

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"clinic/backend/internal/domain"
)

type DoctorRepo struct {
	db *bun.DB
}

func NewDoctorRepo(db *bun.DB) *DoctorRepo {
	return &DoctorRepo{db: db}
}

func (r *DoctorRepo) CreateDoctor(ctx context.Context, d domain.Doctor) (domain.Doctor, error) {
	d.ID = 0
	if _, err := r.db.NewInsert().Model(&d).Returning("*").Exec(ctx); err != nil {
		return domain.Doctor{}, translateError(err)
	}
	return d, nil
}

func (r *DoctorRepo) GetDoctor(ctx context.Context, id int64) (domain.Doctor, error) {
	return findDoctor(ctx, r.db, id)
}

func findDoctor(ctx context.Context, db bun.IDB, id int64) (domain.Doctor, error) {
	var d domain.Doctor
	err := db.NewSelect().Model(&d).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return domain.Doctor{}, translateError(err)
	}
	return d, nil
}

func (r *DoctorRepo) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	rows := []domain.Doctor{}
	if err := r.db.NewSelect().Model(&rows).OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *DoctorRepo) SearchDoctors(ctx context.Context, terms []string) ([]domain.Doctor, error) {
	rows := []domain.Doctor{}
	q := r.db.NewSelect().Model(&rows)
	for _, term := range terms {
		q = q.Where("name ILIKE ?", "%"+likeEscaper.Replace(term)+"%")
	}
	if err := q.OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DoctorRepo) UpdateDoctor(ctx context.Context, id int64, patch domain.DoctorPatch) (domain.Doctor, error) {
	var out domain.Doctor
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := findDoctor(ctx, tx, id)
		if err != nil {
			return err
		}
		out = patch.Apply(current)
		_, err = tx.NewUpdate().Model(&out).WherePK().ExcludeColumn("created_at").Exec(ctx)
		return translateError(err)
	})
	if err != nil {
		return domain.Doctor{}, err
	}
	return out, nil
}

func (r *DoctorRepo) DeleteDoctor(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*domain.Doctor)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *DoctorRepo) MissingDoctorIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	err := r.db.NewSelect().
		Model((*domain.Doctor)(nil)).
		Column("id").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx, &found)
	if err != nil {
		return nil, err
	}
	return missingIDs(ids, found), nil
}

func missingIDs(want, found []int64) []int64 {
	have := make(map[int64]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	var out []int64
	for _, id := range want {
		if !have[id] {
			out = append(out, id)
			have[id] = true
		}
	}
	return out
}
