package blob

import (
	"context"
	"fmt"

	"github.com/dell121212/laberaer/internal/config"
	"github.com/dell121212/laberaer/internal/infra/blob/fs"
	"github.com/dell121212/laberaer/internal/infra/blob/memory"
	"github.com/dell121212/laberaer/internal/infra/blob/s3"
)

// Open selects the blob store named by cfg.Driver; empty means fs.
func Open(ctx context.Context, cfg config.Blob) (Store, error) {
	driver := Driver(cfg.Driver)
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return fs.New(cfg.FSRoot)
	case DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,

			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			SessionToken:    cfg.S3.SessionToken,
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewMemory returns an empty in-memory store.
func NewMemory() Store { return memory.New() }

// NewFakeS3 returns an S3 store backed by an in-process fake bucket.
func NewFakeS3() Store {
	store, _ := s3.NewFake()
	return store
}
