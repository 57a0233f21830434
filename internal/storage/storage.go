package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	cfg "github.com/jewelcase/jewelcase/internal/config"
)

var (
	// ErrExists is returned by Save when the path is already taken
	ErrExists = errors.New("file already exists")
	// ErrNotFound is returned by List when the directory was never created
	ErrNotFound = errors.New("directory not found")
)

// Storage defines the interface for image storage operations.
// Paths are slash-separated and relative to the storage root, e.g. "rings/1700000000000-photo.png".
type Storage interface {
	// Save stores r at path, creating parent directories as needed.
	// Existing files are never overwritten: Save returns ErrExists instead.
	Save(ctx context.Context, path string, r io.Reader) error

	// List returns the names of the files directly under dir in lexical order
	List(ctx context.Context, dir string) ([]string, error)

	// Handler serves stored files; request paths are relative to the storage root
	Handler() http.Handler
}

// New creates the storage backend selected by STORAGE_DRIVER
func New(ctx context.Context, c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageDriverLocal:
		slog.Info("initializing local storage", "dir", c.UploadDir)
		return NewLocalStorage(c.UploadDir)
	case cfg.StorageDriverS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(ctx, S3Config{
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			Endpoint:      c.S3Endpoint,
			PresignExpiry: c.S3PresignExpiry,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
