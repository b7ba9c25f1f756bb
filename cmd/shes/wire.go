package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bsolutions/shes/internal/cli"
	"github.com/bsolutions/shes/internal/config"
	"github.com/bsolutions/shes/internal/db"
	"github.com/bsolutions/shes/internal/events"
	"github.com/bsolutions/shes/internal/registry"
	"github.com/bsolutions/shes/internal/repository"
	"github.com/bsolutions/shes/internal/service"
	"github.com/bsolutions/shes/internal/tracing"
	"github.com/prometheus/client_golang/prometheus"
)

// wiring owns everything wire opened. Close is safe to call more than once
// and on a nil receiver.
type wiring struct {
	closers []func(context.Context) error
	once    sync.Once
	err     error
}

func (w *wiring) Close(ctx context.Context) error {
	if w == nil {
		return nil
	}
	w.once.Do(func() {
		var errs []error
		for i := len(w.closers) - 1; i >= 0; i-- {
			errs = append(errs, w.closers[i](ctx))
		}
		w.err = errors.Join(errs...)
	})
	return w.err
}

func (w *wiring) onClose(fn func(context.Context) error) {
	w.closers = append(w.closers, fn)
}

// wire builds the store, observers and services described by cfg and
// installs them on app. logOut receives structured logs and stdout traces.
func wire(ctx context.Context, app *cli.App, cfg config.Config, logOut io.Writer) (_ *wiring, err error) {
	w := &wiring{}
	defer func() {
		if err != nil {
			_ = w.Close(context.Background())
		}
	}()

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	reg := registry.Default()
	if cfg.Registry.Path != "" {
		if reg, err = registry.LoadFile(cfg.Registry.Path); err != nil {
			return nil, fmt.Errorf("loading registry: %w", err)
		}
	}

	dialect, ok := db.ParseDialect(cfg.DB.Driver)
	if !ok {
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
	database, err := openStore(ctx, dialect, cfg.DB)
	if err != nil {
		return nil, err
	}
	w.onClose(func(context.Context) error { return database.Close() })

	var items repository.ProjectItemRepo = repository.NewSQLProjectItemRepo(database, dialect)
	if cfg.Engine.CacheSize > 0 {
		if items, err = repository.NewCachedProjectItemRepo(items, cfg.Engine.CacheSize); err != nil {
			return nil, err
		}
	}
	uow := db.NewUnitOfWork(database)
	txRepos := repository.SQLTxRepos(dialect)

	var observers []service.UseCaseObserver
	if cfg.Log.UseCases {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}
	if cfg.Metrics.Enabled {
		metrics := prometheus.NewRegistry()
		observer, err := service.NewPrometheusObserver(metrics)
		if err != nil {
			return nil, err
		}
		observers = append(observers, observer)
		path := cfg.Metrics.Textfile
		w.onClose(func(context.Context) error { return writeMetrics(path, metrics) })
	}

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.Enabled = cfg.Tracing.Enabled
	tracingCfg.Exporter = cfg.Tracing.Exporter
	tracingCfg.Writer = logOut
	provider, err := tracing.NewProvider(tracingCfg)
	if err != nil {
		return nil, err
	}
	w.onClose(provider.Shutdown)

	bridge := events.NewBridge()
	if cfg.Log.Events {
		unsubscribe := bridge.Subscribe(events.NewLogSubscriber(logger))
		w.onClose(func(context.Context) error { unsubscribe(); return nil })
	}

	opts := []service.HierarchyOption{
		service.WithObserver(observers...),
		service.WithTracer(provider.Tracer()),
		service.WithBridge(bridge),
	}
	if cfg.Engine.DeleteMode == config.DeleteAtomic {
		opts = append(opts, service.WithAtomicDelete(uow, txRepos.Items))
	}

	app.Registry = reg
	app.Projects = service.NewProjectService(repository.NewSQLProjectRepo(database, dialect), reg, uow, txRepos, observers...)
	app.Import = service.NewImportService(reg, uow, txRepos, observers...)
	app.Hierarchy = service.NewHierarchyService(items, reg, opts...)

	logger.Debug("wired",
		"driver", dialect.String(),
		"registry_types", len(reg.Types()),
		"delete_mode", cfg.Engine.DeleteMode,
		"cache_size", cfg.Engine.CacheSize,
		"config_file", cfg.File,
	)
	return w, nil
}

func openStore(ctx context.Context, dialect db.Dialect, cfg config.DBConfig) (*sql.DB, error) {
	if dialect == db.DialectPostgres {
		return db.OpenPostgres(ctx, cfg.DSN)
	}
	return db.OpenDB(cfg.Path)
}

func writeMetrics(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
