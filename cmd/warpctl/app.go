package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/udisondev/waypoint/internal/config"
	"github.com/udisondev/waypoint/internal/db"
	"github.com/udisondev/waypoint/internal/host"
	"github.com/udisondev/waypoint/internal/position"
	"github.com/udisondev/waypoint/internal/warp"
	"github.com/udisondev/waypoint/internal/world"
)

// app holds everything a command may need. Storage is opened lazily.
type app struct {
	cfg     config.Server
	worlds  *world.Registry
	factory position.Factory
	codec   position.Codec

	engine  *host.MemoryEngine
	service *warp.Service
	close   func()
}

func loadConfig(path string) (config.Server, error) {
	if path == "" {
		path = DefaultConfigPath
		if p := os.Getenv("WAYPOINT_CONFIG"); p != "" {
			path = p
		}
	}
	cfg, err := config.LoadServer(path)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Debug("config loaded", "path", path, "driver", cfg.Database.Driver, "worlds", len(cfg.Worlds))
	return cfg, nil
}

// newOfflineApp resolves worlds from config only, without touching storage.
func newOfflineApp(cfg config.Server) (*app, error) {
	worlds, err := world.LoadRegistry(cfg.WorldEntries())
	if err != nil {
		return nil, fmt.Errorf("loading worlds: %w", err)
	}
	return newApp(cfg, worlds), nil
}

func newApp(cfg config.Server, worlds *world.Registry) *app {
	return &app{
		cfg:     cfg,
		worlds:  worlds,
		factory: position.NewFactory(worlds, cfg.DefaultWorld),
		codec:   position.NewCodec(worlds),
		close:   func() {},
	}
}

// newStoreApp opens storage, bootstraps world identities and builds the
// warp service. The host is an in-memory engine mirroring configured worlds.
func newStoreApp(ctx context.Context, cfg config.Server) (*app, error) {
	var (
		worldStore world.Store
		warpStore  func(position.Codec) warp.Store
		closeFn    func()
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		worldStore = db.NewPostgresWorldRepository(database.Pool())
		warpStore = func(c position.Codec) warp.Store {
			return db.NewPostgresWarpRepository(database.Pool(), c)
		}
		closeFn = database.Close
	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		worldStore = db.NewSQLiteWorldRepository(sqlDB)
		warpStore = func(c position.Codec) warp.Store {
			return db.NewSQLiteWarpRepository(sqlDB, c)
		}
		closeFn = func() { _ = sqlDB.Close() }
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	slog.Debug("storage opened", "driver", cfg.Database.Driver)

	worlds, err := world.Bootstrap(ctx, worldStore, cfg.WorldEntries())
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("bootstrapping worlds: %w", err)
	}

	a := newApp(cfg, worlds)
	a.engine = host.NewMemoryEngine(worlds.Names()...)
	a.service = warp.NewService(
		warpStore(a.codec),
		a.codec,
		host.NewAdapter(a.engine, worlds),
		cfg.ImportWorkers,
	)
	a.close = closeFn
	return a, nil
}

// decodeArg accepts a JSON payload (string or object) or a bare compact string.
func (a *app) decodeArg(arg string) (position.Position, error) {
	if len(arg) > 0 && (arg[0] == '{' || arg[0] == '"') {
		return a.codec.Unmarshal([]byte(arg))
	}
	return a.codec.Decode(position.CompactEncoded(arg))
}
