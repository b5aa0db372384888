// Package storage provides the blob store backends and the persistence
// adapter that round-trips the workout collection through them.
package storage

import "context"

// WorkoutsKey is the single blob key the application uses.
const WorkoutsKey = "workouts"

// BlobStore is an opaque key-value store holding whole-value blobs.
// Put overwrites any prior value entirely; there is no merge.
type BlobStore interface {
	// Get returns the blob and true, or ok=false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
