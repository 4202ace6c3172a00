package http

import (
	"context"
	"fmt"
	"log/slog"

	"todoapi/internal/adapter/cache/memory"
	"todoapi/internal/adapter/cache/redis"
	"todoapi/internal/adapter/database/postgres"
	pgrepository "todoapi/internal/adapter/database/postgres/repository"
	"todoapi/internal/adapter/database/sqlite"
	sqliterepository "todoapi/internal/adapter/database/sqlite/repository"
	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/port"
	"todoapi/internal/core/service"
	"todoapi/pkg/config"
	"todoapi/pkg/logger"
)

type Container struct {
	TodoRepo    port.TodoRepository
	TodoService port.TodoService
	TodoHandler *handler.TodoHandler
	Cache       port.CacheRepository

	closers []func() error
}

// NewContainer wires the repository selected by cfg.Database.Driver, the
// service, the handler and the response cache store.
func NewContainer(ctx context.Context, cfg *config.AppConfig, log *logger.Logger, probe port.Telemetry) (*Container, error) {
	c := &Container{}

	todoRepo, err := c.newTodoRepository(ctx, cfg, probe)

	if err != nil {
		return nil, err
	}

	cache, err := c.newCache(ctx, cfg)

	if err != nil {
		c.Close()
		return nil, err
	}

	todoSvc := service.NewTodoService(todoRepo, probe)

	c.TodoRepo = todoRepo
	c.TodoService = todoSvc
	c.TodoHandler = handler.NewTodoHandler(todoSvc, validation.NewValidator(), log)
	c.Cache = cache

	return c, nil
}

func (c *Container) newTodoRepository(ctx context.Context, cfg *config.AppConfig, probe port.Telemetry) (port.TodoRepository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database.URL)

		if err != nil {
			return nil, err
		}

		c.closers = append(c.closers, func() error {
			db.Close()
			return nil
		})

		return pgrepository.NewTodoRepository(db, probe), nil
	case "sqlite":
		db, err := sqlite.NewDB(sqlite.Options{
			Path:        cfg.Database.Path,
			SQLLogLevel: cfg.Database.SQLLogLevel,
		})

		if err != nil {
			return nil, err
		}

		c.closers = append(c.closers, db.Close)

		return sqliterepository.NewTodoRepository(db, probe), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func (c *Container) newCache(ctx context.Context, cfg *config.AppConfig) (port.CacheRepository, error) {
	if cfg.RedisURL != "" {
		cache, err := redis.New(ctx, cfg.RedisURL)

		if err != nil {
			return nil, err
		}

		slog.Info("Response cache using redis")
		c.closers = append(c.closers, cache.Close)

		return cache, nil
	}

	cache := memory.New(cfg.CacheTTL)
	c.closers = append(c.closers, cache.Close)

	return cache, nil
}

func (c *Container) Close() error {
	var firstErr error

	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	c.closers = nil

	return firstErr
}
