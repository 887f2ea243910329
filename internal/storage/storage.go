// Package storage opens the record store selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deptsite/deptcms/config"
	"github.com/deptsite/deptcms/internal/core/record"
	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/internal/storage/memory"
	"github.com/deptsite/deptcms/internal/storage/mongodb"
	"github.com/deptsite/deptcms/internal/storage/postgres"
	"github.com/deptsite/deptcms/internal/storage/sqlite"
)

// Open connects to the configured backend, applies migrations and creates
// the unique indexes for defs. Any failure is returned before a store is
// handed out, so callers can refuse to serve.
func Open(ctx context.Context, cfg *config.StorageConfig, defs []*schema.ResourceDefinition) (record.Store, error) {
	store, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := store.EnsureIndexes(ctx, defs); err != nil {
		store.Close()
		return nil, err
	}

	slog.Info("Storage ready", "driver", cfg.Driver)
	return store, nil
}

func open(ctx context.Context, cfg *config.StorageConfig) (record.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil

	case config.DriverPostgres:
		client, err := postgres.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := client.Migrate(ctx); err != nil {
			client.Close()
			return nil, err
		}
		return client.Store(), nil

	case config.DriverSQLite:
		client, err := sqlite.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := client.Migrate(ctx); err != nil {
			client.Close()
			return nil, err
		}
		return client.Store(), nil

	case config.DriverMongo:
		return mongodb.Connect(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
