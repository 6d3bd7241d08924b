// Package bootstrap opens the storage backend selected by configuration. It
// is shared by the API server and the admin CLI.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/persistence"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/repository/memory"
	"github.com/spec-kit/workforce-service/internal/repository/mongostore"
)

// Backend is an opened storage driver. Postgres and Mongo are nil unless
// that driver was selected.
type Backend struct {
	Stores   repository.Stores
	Postgres *persistence.Postgres
	Mongo    *persistence.Mongo
}

// Open connects the configured driver. Postgres migrations run when
// migrate is true.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, migrate bool) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if migrate {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		stores := repository.NewPostgresStores(pg.PoolHandle())
		stores.Close = func(context.Context) error {
			pg.Close()
			return nil
		}
		return &Backend{Stores: stores, Postgres: pg}, nil

	case config.StorageDriverMongo:
		m, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := mongostore.EnsureIndexes(ctx, m.Database); err != nil {
			_ = m.Close(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		stores := mongostore.New(m.Database)
		return &Backend{Stores: stores, Mongo: m}, nil

	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return &Backend{Stores: memory.New().Stores()}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// Close releases the backend connections.
func (b *Backend) Close(ctx context.Context) error {
	if b == nil || b.Stores.Close == nil {
		return nil
	}
	return b.Stores.Close(ctx)
}
