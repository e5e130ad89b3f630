package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func Open(databaseURL string, pool PoolConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	db := bun.NewDB(sqlDB, pgdialect.New())
	db.RegisterModel((*domain.ServiceDoctor)(nil))
	return db, nil
}

func Close(db *bun.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// Pinger reports database reachability for readiness checks.
type Pinger struct {
	db *bun.DB
}

func NewPinger(db *bun.DB) *Pinger {
	return &Pinger{db: db}
}

func (p *Pinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

const (
	codeForeignKeyViolation = "23503"
	codeExclusionViolation  = "23P01"

	overlapConstraint = "appointments_no_overlap"
)

// translateError maps constraint violations onto store sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeExclusionViolation && pgErr.ConstraintName == overlapConstraint:
			return store.ErrConflict
		case pgErr.Code == codeForeignKeyViolation:
			return store.ErrNotFound
		}
	}
	return err
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
