// Package backend opens the snapshot store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/storage"
	"github.com/cory-johannsen/warband/internal/storage/postgres"
	"github.com/cory-johannsen/warband/internal/storage/sqlite"
)

// Open returns the SnapshotStore named by cfg.Driver. The "none" driver
// returns a nil store and a nil error.
//
// Precondition: cfg must have passed config validation.
// Postcondition: Returns an open store the caller must Close, or an error.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.SnapshotStore, error) {
	switch cfg.Driver {
	case "none", "":
		logger.Debug("snapshot storage disabled")
		return nil, nil
	case "memory":
		logger.Info("using in-memory snapshot storage")
		return storage.NewMemoryStore(), nil
	case "sqlite":
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite snapshot storage", zap.String("path", cfg.SQLitePath))
		return store, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := pool.SchemaReady(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("using postgres snapshot storage",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name),
		)
		return postgres.NewOwnedSnapshotRepository(pool), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
