package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"trivia-visualizer/internal/config"
	pgmigrations "trivia-visualizer/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies (or rolls back) the load archive migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run load archive migrations on Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if rollback {
				return rollbackMigrations(cmd.Context(), cfg)
			}
			return runMigrationsWithConfig(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration group")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	return withMigrator(cfg, func(migrator *migrate.Migrator) error {
		if err := migrator.Init(ctx); err != nil {
			return err
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return err
		}
		if group.IsZero() {
			log.Printf("archive schema up to date")
			return nil
		}
		log.Printf("migrated archive to %s", group)
		return nil
	})
}

func rollbackMigrations(ctx context.Context, cfg config.Config) error {
	return withMigrator(cfg, func(migrator *migrate.Migrator) error {
		group, err := migrator.Rollback(ctx)
		if err != nil {
			return err
		}
		if group.IsZero() {
			log.Printf("nothing to roll back")
			return nil
		}
		log.Printf("rolled back %s", group)
		return nil
	})
}

func withMigrator(cfg config.Config, fn func(*migrate.Migrator) error) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	return fn(migrate.NewMigrator(db, pgmigrations.Migrations))
}
