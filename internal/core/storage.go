package core

import (
	"context"
	"fmt"

	"github.com/dell121212/laberaer/internal/config"
	"github.com/dell121212/laberaer/internal/infra/persistence/memory"
	"github.com/dell121212/laberaer/internal/infra/persistence/postgres"
	"github.com/dell121212/laberaer/internal/infra/persistence/sqlite"
	"github.com/dell121212/laberaer/pkg/domain"
)

// StorageDriver identifies a concrete persistence backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file, the local device cache
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server, the remote backend
)

// OpenBackends selects the persistence backend named by cfg.Driver. An empty
// driver means sqlite.
func OpenBackends(ctx context.Context, cfg config.Storage) (domain.Backends, error) {
	driver := StorageDriver(cfg.Driver)
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewBackends(), nil
	case StorageSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case StoragePostgres:
		return postgres.Open(ctx, cfg.PostgresDSN)
	default:
		return domain.Backends{}, fmt.Errorf("unknown storage driver %s", driver)
	}
}
