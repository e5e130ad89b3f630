package postgres

import (
	"context"
	"embed"
	"io/fs"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	migrationsTable     = "clinic_migrations"
	migrationLocksTable = "clinic_migration_locks"
)

// Migrations discovers the embedded SQL migrations.
func Migrations() (*migrate.Migrations, error) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	migs := migrate.NewMigrations()
	if err := migs.Discover(sub); err != nil {
		return nil, err
	}
	return migs, nil
}

// NewMigrator returns a migrator over the embedded migrations. A migration is
// recorded only after it applied cleanly.
func NewMigrator(db *bun.DB) (*migrate.Migrator, error) {
	migs, err := Migrations()
	if err != nil {
		return nil, err
	}
	return migrate.NewMigrator(db, migs,
		migrate.WithTableName(migrationsTable),
		migrate.WithLocksTableName(migrationLocksTable),
		migrate.WithMarkAppliedOnSuccess(true),
	), nil
}

// MigrateUp applies every pending migration under the migration lock and
// returns the names it applied.
func MigrateUp(ctx context.Context, db *bun.DB) (applied []string, err error) {
	m, err := NewMigrator(db)
	if err != nil {
		return nil, err
	}
	if err := m.Init(ctx); err != nil {
		return nil, err
	}
	if err := m.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if unlockErr := m.Unlock(context.WithoutCancel(ctx)); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()

	group, err := m.Migrate(ctx)
	if err != nil {
		return nil, err
	}
	for _, mig := range group.Migrations {
		applied = append(applied, mig.String())
	}
	return applied, nil
}

// MigrationStatus lists the embedded migrations with their applied state.
func MigrationStatus(ctx context.Context, db *bun.DB) (migrate.MigrationSlice, error) {
	m, err := NewMigrator(db)
	if err != nil {
		return nil, err
	}
	if err := m.Init(ctx); err != nil {
		return nil, err
	}
	return m.MigrationsWithStatus(ctx)
}
