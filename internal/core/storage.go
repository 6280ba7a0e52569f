package core

import (
	"context"
	"fmt"

	"citycore/internal/blob"
	"citycore/internal/config"
	blobpersist "citycore/internal/infra/persistence/blob"
	"citycore/internal/infra/persistence/file"
	"citycore/internal/infra/persistence/memory"
	"citycore/internal/infra/persistence/postgres"
	"citycore/internal/infra/persistence/sqlite"
	"citycore/pkg/domain"
)

// StorageDriver identifies a snapshot persister implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = config.StorageMemory   // in-memory only (tests / ephemeral)
	StorageFile     StorageDriver = config.StorageFile     // JSON document on disk
	StorageSQLite   StorageDriver = config.StorageSQLite   // embedded sqlite file
	StoragePostgres StorageDriver = config.StoragePostgres // PostgreSQL server
	StorageBlob     StorageDriver = config.StorageBlob     // object in a blob store
)

// OpenPersister builds the persister selected by cfg.Driver (default file).
// Persisters holding connections also implement io.Closer.
func OpenPersister(ctx context.Context, cfg config.Storage) (domain.Persister, error) {
	driver := StorageDriver(cfg.Driver)
	if driver == "" {
		driver = StorageFile
	}
	switch driver {
	case StorageMemory:
		return memory.New(), nil
	case StorageFile:
		return file.New(cfg.FilePath), nil
	case StorageSQLite:
		p, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return p, nil
	case StoragePostgres:
		p, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return p, nil
	case StorageBlob:
		store, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		return blobpersist.New(store, cfg.Blob.Key), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
