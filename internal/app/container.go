// Package app wires together the Optimization Core's dependencies:
// configuration, logging, metrics, the database connection, the Run
// Repository, the Solver Plugin Framework's registry and executor, and
// the Optimization Engine itself. cmd/cadence's main builds exactly one
// Container per process and hands it to every CLI subcommand.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/wrenfield/cadence/internal/engine/builtin"
	"github.com/wrenfield/cadence/internal/engine/registry"
	"github.com/wrenfield/cadence/internal/engine/runtime"
	"github.com/wrenfield/cadence/internal/shared/infrastructure/database"
	"github.com/wrenfield/cadence/internal/shared/infrastructure/migrations"
	"github.com/wrenfield/cadence/internal/timetable/engine"
	"github.com/wrenfield/cadence/internal/timetable/infrastructure/persistence"
	"github.com/wrenfield/cadence/pkg/config"
	"github.com/wrenfield/cadence/pkg/observability"

	_ "github.com/wrenfield/cadence/internal/shared/infrastructure/database/postgres" // registers the postgres driver
	sqliteconn "github.com/wrenfield/cadence/internal/shared/infrastructure/database/sqlite"
)

// Container holds every dependency the CLI's subcommands need.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	DBConn database.Connection

	RunRepository engine.RunRepository

	EngineRegistry *registry.Registry
	EngineExecutor *runtime.Executor

	Engine *engine.Engine
}

// NewContainer loads configuration and constructs every dependency. The
// returned Container is ready for CLI commands to use; callers should
// defer Close to release the database connection.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.LoggerFromEnv()
	metrics := observability.NewInMemoryMetrics()
	health := observability.NewHealthRegistry()

	dbConn, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	health.Register("database", observability.DatabaseHealthChecker(dbConn.Ping))

	runRepo := persistence.NewRunRepository(dbConn)
	if err := runRepo.EnsureSchema(ctx); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("ensure run repository schema: %w", err)
	}

	engineRegistry := registry.NewRegistry(logger)
	if err := engineRegistry.RegisterBuiltin(builtin.NewDefaultSolverEngine()); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("register default solver engine: %w", err)
	}
	if err := engineRegistry.RegisterBuiltin(builtin.NewSolverEnginePro()); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("register pro solver engine: %w", err)
	}
	health.Register("engine_registry", observability.EngineRegistryHealthChecker(func(ctx context.Context) error {
		for _, entry := range engineRegistry.List() {
			if entry.Status == registry.StatusFailed {
				return fmt.Errorf("engine %s is in failed state", entry.Manifest.ID)
			}
		}
		return nil
	}))

	engineExecutor := runtime.NewExecutor(engineRegistry, runtime.NewMetricsCollector(), logger, runtime.DefaultExecutorConfig())

	optimizationEngine := engine.New(engineRegistry, engineExecutor, runRepo, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Metrics:        metrics,
		Health:         health,
		DBConn:         dbConn,
		RunRepository:  runRepo,
		EngineRegistry: engineRegistry,
		EngineExecutor: engineExecutor,
		Engine:         optimizationEngine,
	}, nil
}

// Close releases the database connection and shuts down any loaded
// out-of-process engine plugins.
func (c *Container) Close() error {
	c.EngineRegistry.ShutdownAll(context.Background())
	return c.DBConn.Close()
}

func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (database.Connection, error) {
	dbCfg := database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return nil, err
	}

	if conn.Driver() == database.DriverSQLite {
		sqliteConn, ok := conn.(*sqliteconn.Connection)
		if !ok {
			return nil, fmt.Errorf("unexpected sqlite connection type %T", conn)
		}
		if err := runSQLiteMigrations(ctx, sqliteConn.DB()); err != nil {
			conn.Close()
			return nil, err
		}
		logger.Debug("applied sqlite migrations")
	}

	return conn, nil
}

func runSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		return fmt.Errorf("run sqlite migrations: %w", err)
	}
	return nil
}
