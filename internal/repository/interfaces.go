package repository

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by Load when nothing has been saved under the key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobRepository stores opaque serialized state under a string key.
// Save overwrites whatever was stored before.
type BlobRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Driver names accepted by STORAGE_DRIVER
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverS3       = "s3"
)

type Repositories struct {
	Blob BlobRepository

	// Close releases the backend's connections, if any.
	Close func() error
}
