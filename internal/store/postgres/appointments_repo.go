package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type schedulingTx struct {
	tx       bun.Tx
	readOnly bool
}

func (r *AppointmentRepo) GetAppointment(ctx context.Context, id int64) (domain.Appointment, error) {
	var a domain.Appointment
	if err := r.db.NewSelect().Model(&a).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return domain.Appointment{}, translateError(err)
	}
	return a, nil
}

func (r *AppointmentRepo) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	rows := []domain.Appointment{}
	if err := r.db.NewSelect().Model(&rows).OrderExpr("starts_at ASC, id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) DeleteAppointment(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*domain.Appointment)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *AppointmentRepo) InDoctorTransaction(ctx context.Context, doctorID int64, fn func(ctx context.Context, tx store.SchedulingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockDoctorSchedule(ctx, tx, doctorID); err != nil {
			return err
		}
		return fn(ctx, schedulingTx{tx: tx})
	})
}

func (r *AppointmentRepo) InReadTransaction(ctx context.Context, fn func(ctx context.Context, tx store.SchedulingTx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	return r.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, schedulingTx{tx: tx, readOnly: true})
	})
}

func doctorLockKey(doctorID int64) string {
	return "doctor:" + strconv.FormatInt(doctorID, 10)
}

func lockDoctorSchedule(ctx context.Context, tx bun.Tx, doctorID int64) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", doctorLockKey(doctorID)).Exec(ctx)
	return err
}

func (s schedulingTx) FindDoctorByID(ctx context.Context, id int64) (domain.Doctor, error) {
	return findDoctor(ctx, s.tx, id)
}

func (s schedulingTx) GetAppointmentForUpdate(ctx context.Context, id int64) (domain.Appointment, error) {
	var a domain.Appointment
	if err := s.tx.NewSelect().Model(&a).Where("id = ?", id).For("UPDATE").Limit(1).Scan(ctx); err != nil {
		return domain.Appointment{}, translateError(err)
	}
	return a, nil
}

func (s schedulingTx) CountOverlappingAppointments(ctx context.Context, doctorID int64, span domain.Interval, excludeID int64) (int, error) {
	q := s.tx.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("doctor_id = ?", doctorID).
		Where("status <> ?", domain.StatusCancelled).
		Where("starts_at < ?", span.End).
		Where("ends_at > ?", span.Start)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return q.Count(ctx)
}

func (s schedulingTx) CountOverlappingUnavailability(ctx context.Context, doctorID int64, span domain.Interval) (int, error) {
	return s.tx.NewSelect().
		Model((*domain.Unavailability)(nil)).
		Where("doctor_id = ?", doctorID).
		Where("frequency = ?", domain.FrequencyOnce).
		Where("starts_at < ?", span.End).
		Where("ends_at > ?", span.Start).
		Count(ctx)
}

func (s schedulingTx) ListRecurringUnavailability(ctx context.Context, doctorID int64, before time.Time) ([]domain.Unavailability, error) {
	var rows []domain.Unavailability
	err := s.tx.NewSelect().
		Model(&rows).
		Where("doctor_id = ?", doctorID).
		Where("frequency <> ?", domain.FrequencyOnce).
		Where("starts_at < ?", before).
		OrderExpr("starts_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s schedulingTx) InsertAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	if s.readOnly {
		return domain.Appointment{}, store.ErrReadOnly
	}
	m := a
	m.ID = 0
	if _, err := s.tx.NewInsert().Model(&m).Returning("*").Exec(ctx); err != nil {
		return domain.Appointment{}, translateError(err)
	}
	return m, nil
}

func (s schedulingTx) UpdateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	if s.readOnly {
		return domain.Appointment{}, store.ErrReadOnly
	}
	res, err := s.tx.NewUpdate().
		Model(&a).
		WherePK().
		ExcludeColumn("id", "created_at").
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, translateError(err)
	}
	if err := requireAffected(res); err != nil {
		return domain.Appointment{}, err
	}
	return a, nil
}

func (s schedulingTx) FetchAppointmentsInRange(ctx context.Context, doctorID int64, span domain.Interval) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := s.tx.NewSelect().
		Model(&rows).
		Where("doctor_id = ?", doctorID).
		Where("status <> ?", domain.StatusCancelled).
		Where("starts_at < ?", span.End).
		Where("ends_at > ?", span.Start).
		OrderExpr("starts_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s schedulingTx) FetchUnavailabilityInRange(ctx context.Context, doctorID int64, span domain.Interval) ([]domain.Unavailability, error) {
	var rows []domain.Unavailability
	err := s.tx.NewSelect().
		Model(&rows).
		Where("doctor_id = ?", doctorID).
		Where("frequency = ?", domain.FrequencyOnce).
		Where("starts_at < ?", span.End).
		Where("ends_at > ?", span.Start).
		OrderExpr("starts_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
