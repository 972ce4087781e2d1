package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/config"
	"github.com/JonMunkholm/conform/internal/core"
	"github.com/JonMunkholm/conform/internal/load"
	"github.com/JonMunkholm/conform/internal/metrics"
	"github.com/JonMunkholm/conform/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
)

// app holds the connections and the service built from one Config.
type app struct {
	cfg     *config.Config
	pool    *pgxpool.Pool
	duck    *sql.DB
	metrics *metrics.Registry
	service *core.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.NewRegistry()}

	if cfg.NeedsDatabase() {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.pool = pool
	}
	if cfg.Load.Sink == config.KindDuckDB {
		db, err := store.OpenDuckDB(ctx, cfg.Load.DuckDBPath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.duck = db
		slog.Info("opened duckdb", "path", cfg.Load.DuckDBPath)
	}

	src, err := a.source()
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []core.Option{
		core.WithMetrics(a.metrics),
		core.WithLimiter(core.NewRunLimiter(cfg.Run.MaxConcurrent, cfg.Run.MaxWaitTime)),
		core.WithMaxConcurrent(cfg.Load.MaxConcurrent),
		core.WithFailFast(cfg.Load.FailFast),
		core.WithTableTimeout(cfg.Load.Timeout),
	}
	if cfg.Run.AsOf != "" {
		opts = append(opts, core.WithAsOf(cfg.Run.AsOfTime(time.Now())))
	}
	// Reloading bronze only makes sense when reading the CSV extracts.
	if cfg.Source.Kind == config.KindCSV {
		opts = append(opts, core.WithBronzeLoader(a.loader(cfg.Source.BronzeSchema)))
	}

	a.service = core.NewService(src, a.loader(cfg.Load.SilverSchema), opts...)
	return a, nil
}

func (a *app) source() (bronze.Source, error) {
	switch a.cfg.Source.Kind {
	case config.KindPostgres:
		return bronze.NewPostgresSource(a.pool, a.cfg.Source.BronzeSchema), nil
	case config.KindCSV:
		var files map[string]string
		if a.cfg.Source.Manifest != "" {
			m, err := config.LoadManifest(a.cfg.Source.Manifest)
			if err != nil {
				return nil, err
			}
			files = m.Apply(&a.cfg.Source)
		}
		return bronze.NewCSVSource(a.cfg.Source.DataDir, files), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", a.cfg.Source.Kind)
	}
}

func (a *app) loader(schema string) load.Loader {
	if a.duck != nil {
		return load.NewSQLLoader(a.duck, schema)
	}
	return load.NewPostgresLoader(a.pool, schema,
		load.WithCopy(a.cfg.Load.UseCopy),
		load.WithBatchSize(a.cfg.Load.BatchSize),
	)
}

// health pings every open store.
func (a *app) health(ctx context.Context) error {
	var errs []error
	if a.pool != nil {
		errs = append(errs, a.pool.Ping(ctx))
	}
	if a.duck != nil {
		errs = append(errs, a.duck.PingContext(ctx))
	}
	return errors.Join(errs...)
}

// writeMetrics dumps the registry when METRICS_TEXTFILE is set.
func (a *app) writeMetrics() {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		slog.Warn("failed to write metrics textfile", "path", path, "error", err)
	}
}

func (a *app) Close() {
	if a.duck != nil {
		if err := a.duck.Close(); err != nil {
			slog.Warn("closing duckdb", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func openPool(ctx context.Context, dbc config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbc.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(dbc.MaxConns)
	poolConfig.MinConns = int32(dbc.MinConns)
	poolConfig.MaxConnLifetime = dbc.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dbc.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(dbc.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}
