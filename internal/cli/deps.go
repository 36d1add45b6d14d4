package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"trivia-visualizer/internal/app"
	"trivia-visualizer/internal/config"
	"trivia-visualizer/internal/domain"
	"trivia-visualizer/internal/infra/memory"
	pgarchive "trivia-visualizer/internal/infra/postgres"
	rediscache "trivia-visualizer/internal/infra/redis"
	"trivia-visualizer/internal/infra/sqlite"
	"trivia-visualizer/internal/opentdb"
)

// archive is the load archive as used by the CLI: recording plus listing.
type archive interface {
	app.Recorder
	Recent(ctx context.Context, limit int) ([]domain.LoadRecord, error)
}

// deps holds the wired infrastructure shared by the commands.
type deps struct {
	service *app.DashboardService
	archive archive
	redis   *redis.Client
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{}

	client := opentdb.NewClient(cfg.OpenTDB.BaseURL, &http.Client{
		Timeout: config.TTLDuration(cfg.OpenTDB.Timeout, 15*time.Second),
	})

	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = d.redis.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, time.Hour)

	var catalog app.CatalogRepository
	var store app.DashboardStore
	if d.redis != nil {
		catalog = rediscache.NewCategoryCache(d.redis, client, catalogTTL)
		store = rediscache.NewDashboardStore(d.redis, redisTTL)
	} else {
		catalog = memory.NewCategoryCache(client, catalogTTL)
		store = memory.NewDashboardStore()
	}

	arc, err := openArchive(ctx, cfg, d)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.archive = arc

	opts := app.Options{QuestionAmount: cfg.OpenTDB.Amount}
	if arc != nil {
		opts.Recorder = arc
	}
	d.service = app.NewDashboardService(store, catalog, client, opts)
	return d, nil
}

// openArchive prefers Postgres, then SQLite; nil means loads are not archived.
func openArchive(ctx context.Context, cfg config.Config, d *deps) (archive, error) {
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.closers = append(d.closers, pool.Close)
		return pgarchive.NewArchive(pool), nil
	case cfg.SQLite.Path != "":
		a, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() {
			if err := a.Close(); err != nil {
				log.Printf("close sqlite archive: %v", err)
			}
		})
		return a, nil
	}
	return nil, nil
}
