// Package blob selects a blob storage backend from configuration and re-exports
// the shared contract so callers depend on a single import.
package blob

import (
	"context"
	"fmt"

	"citycore/internal/blob/core"
	"citycore/internal/config"
	"citycore/internal/infra/blob/fs"
	memorystore "citycore/internal/infra/blob/memory"
	infraS3 "citycore/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface every backend implements.
	Store = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrNotFound = core.ErrNotFound
	ErrExists   = core.ErrExists
)

// Open constructs the backend named by cfg.Driver (default fs).
func Open(ctx context.Context, cfg config.Blob) (Store, error) {
	driver := Driver(cfg.Driver)
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		s, err := fs.New(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return memorystore.New(), nil
	case DriverS3:
		s, err := infraS3.New(ctx, infraS3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

// NewMockS3ForTests exposes the fake-transport S3 store for cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
