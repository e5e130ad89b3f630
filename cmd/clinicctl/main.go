package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"clinic/backend/internal/config"
	"clinic/backend/internal/store/postgres"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinicctl",
		Short:        "Clinic scheduling maintenance tool",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func openDB(cfg config.Config) (*bun.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("CLINIC_DATABASE_URL is not set")
	}
	return postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer postgres.Close(db)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			applied, err := postgres.MigrateUp(ctx, db)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", name)
			}
			return nil
		},
	}
	upCmd.Flags().Duration("timeout", time.Minute, "overall migration timeout")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer postgres.Close(db)

			migrations, err := postgres.MigrationStatus(cmd.Context(), db)
			if err != nil {
				return err
			}
			for _, m := range migrations {
				status := "pending"
				if m.IsApplied() {
					status = "applied " + m.MigratedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.String(), status)
			}
			return nil
		},
	}

	cmd.AddCommand(upCmd, listCmd)
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fake doctors and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctors, _ := cmd.Flags().GetInt("doctors")
			services, _ := cmd.Flags().GetInt("services")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer postgres.Close(db)

			res, err := seed(cmd.Context(), postgres.NewDoctorRepo(db), postgres.NewServiceRepo(db), doctors, services)
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d doctors and %d services\n", len(res.doctors), len(res.services))
			return nil
		},
	}
	cmd.Flags().Int("doctors", 10, "number of doctors to create")
	cmd.Flags().Int("services", 5, "number of services to create")
	return cmd
}
