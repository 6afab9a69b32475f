// Package server wires storage, caching and the HTTP API together and runs
// them until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/cache"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const dbPingTimeout = 5 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	userService *services.UserService
	taskService *services.TaskService
}

// NewApp opens the database, applies migrations and builds the services.
// A Redis address in config enables the task cache.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var tc cache.TaskCache = cache.NopCache{}
	if c.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, c.RedisAddr)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = rdb
		tc = cache.NewRedisCache(rdb, c.TaskCacheTTL)
		logger.Info(ctx, "Task cache enabled", "redis_addr", c.RedisAddr, "ttl", c.TaskCacheTTL.String())
	}

	app.userService = services.NewUserService(db, rm, c)
	app.taskService = services.NewTaskService(db, rm, tc, logger.With("module", "task_service"))

	return app, nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := httpapi.NewHTTPServer(httpapi.Options{
		Address:           app.config.HTTPAddr,
		SecretKey:         app.config.SecretKey,
		CORSAllowedOrigin: app.config.CORSAllowedOrigin,
		Registry:          reg,
	}, app.logger, app.userService, app.taskService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
}

// Run blocks until SIGINT/SIGTERM/SIGQUIT or a fatal server error.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "address", app.config.HTTPAddr)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
}
