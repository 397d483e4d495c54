package storage

import (
	"context"
	"fmt"

	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/journal"
)

// Open creates the storage backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.JournalConfig) (journal.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(cfg.Memory.MaxRecords), nil
	case DriverSQLite, DriverSQLite3:
		return NewSQLiteStorage(cfg.Backend, cfg.SQLite)
	case backendRedis:
		return NewRedisStorage(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported journal backend: %s", cfg.Backend)
	}
}
