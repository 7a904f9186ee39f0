package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"legalassist-backend/config"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an object does not exist
var ErrNotFound = errors.New("object not found")

// Storage stores archived case documents
type Storage interface {
	// Put stores data under key
	Put(ctx context.Context, key, contentType string, data io.Reader) error

	// Get retrieves the object stored under key
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object stored under key; a missing object is not an error
	Delete(ctx context.Context, key string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch StorageType(cfg.Type) {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// CaseArchiveKey is the object key of a saved case's JSON archive.
// Keys are sharded by the first two characters of the user ID.
func CaseArchiveKey(userID, caseID uuid.UUID) string {
	u := userID.String()
	return fmt.Sprintf("cases/%s/%s/%s.json", u[:2], u, caseID.String())
}
