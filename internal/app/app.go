// internal/app/app.go
//
// Shared bootstrap for cmd/web and cmd/routesync.
//
// Context
// -------
// Both binaries need the same object graph:
//
//	config ─► DB ─► SQLStore ─┬─► Synchronizer ─► catalog.Repository
//	                          └─► Loader factory ─► routing.Dispatcher
//	handler registry ─► Discovery ─┘
//
// New wires the graph once.  The catalog controller is registered in the
// process-wide handler registry here because it needs the repository.
//
// Notes
// -----
// • Loaders built by the dispatcher invalidate the LRU directly, never the
//   dispatcher, so a rebuild cannot discard its own result.
// • Oxford commas, two spaces after periods.

package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/dbroute/components/catalog"
	"github.com/yanizio/dbroute/internal/cache"
	"github.com/yanizio/dbroute/internal/config"
	"github.com/yanizio/dbroute/internal/database"
	"github.com/yanizio/dbroute/internal/dbroute"
	"github.com/yanizio/dbroute/internal/handler"
	"github.com/yanizio/dbroute/internal/routing"
	"github.com/yanizio/dbroute/internal/vault"
)

// App is the wired route service.
type App struct {
	Config     *config.Config
	DB         *sqlx.DB
	Cache      *cache.LRU
	Store      *dbroute.SQLStore
	Handlers   *handler.Registry
	Discovery  *dbroute.Discovery
	Entities   *dbroute.EntityRegistry
	Sync       *dbroute.Synchronizer
	Dispatcher *routing.Dispatcher
	Catalog    *catalog.Repository
}

// Open resolves the DSN (through Vault when configured), connects, and
// wires the App.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	var secrets config.SecretGetter
	if _, _, ok := vault.ParseRef(cfg.Database.Password); ok {
		cli, err := vault.New(ctx)
		if err != nil {
			return nil, err
		}
		secrets = cli
	}

	dsn, err := cfg.Database.ResolveDSN(ctx, secrets)
	if err != nil {
		return nil, fmt.Errorf("resolve dsn: %w", err)
	}

	db, err := database.Open(ctx, dsn, database.Options{
		MaxOpen:     cfg.Database.MaxOpen,
		MaxIdle:     cfg.Database.MaxIdle,
		MaxLifetime: cfg.Database.MaxLifetime,
		PingRetries: cfg.Database.PingRetries,
	})
	if err != nil {
		return nil, err
	}
	zap.S().Infow("database online")
	return New(cfg, db, handler.Default()), nil
}

// New wires an App around an open db and a handler registry.
func New(cfg *config.Config, db *sqlx.DB, handlers *handler.Registry) *App {
	a := &App{
		Config:   cfg,
		DB:       db,
		Cache:    cache.New(cfg.Routing.CacheCapacity),
		Store:    dbroute.NewSQLStore(db),
		Handlers: handlers,
		Entities: dbroute.NewEntityRegistry(),
	}
	a.Discovery = dbroute.NewDiscovery(handlers)

	a.Dispatcher = routing.NewDispatcher(
		func() routing.TableLoader { return a.NewLoader() },
		handlers.Lookup,
		a.Cache,
		cfg.Routing.CacheNamespace,
	)
	a.Sync = dbroute.NewSynchronizer(a.Discovery, a.Store, a.Dispatcher, a.options())

	a.Catalog = catalog.NewRepository(db, a.Sync)
	a.Catalog.RegisterSources(a.Entities)
	handlers.Register(catalog.NewController(a.Catalog))
	return a
}

// Offline wires an App without a database.  Only discovery and the handler
// registry are usable.
func Offline(cfg *config.Config) *App {
	return New(cfg, nil, handler.Default())
}

// NewLoader returns a fresh one-shot loader.
func (a *App) NewLoader() *dbroute.Loader {
	return dbroute.NewLoader(a.Discovery, a.Entities, a.Store, a.Cache, a.options())
}

// Migrations returns every DDL statement in apply order.
func Migrations() []string {
	return append(dbroute.Migrations(), catalog.Migrations()...)
}

// Migrate applies Migrations().
func (a *App) Migrate(ctx context.Context) error {
	return database.Migrate(ctx, a.DB, Migrations()...)
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func (a *App) options() dbroute.Options {
	return dbroute.Options{
		DefaultLocale: a.Config.Routing.DefaultLocale,
		CacheTag:      a.Config.Routing.CacheNamespace,
	}
}
