package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/meltforce/pacemap/internal/workout"
)

// Archive persists the workout collection as one JSON array under a fixed
// blob key. Saves overwrite the whole blob; loads recover from a missing or
// corrupt blob by returning the empty collection.
type Archive struct {
	blobs BlobStore
	key   string
	log   *slog.Logger
}

// NewArchive wraps a blob store with the workout serialization.
func NewArchive(blobs BlobStore, log *slog.Logger) *Archive {
	return &Archive{blobs: blobs, key: WorkoutsKey, log: log}
}

// Save serializes the ordered collection in its flattened form and
// overwrites the blob.
func (a *Archive) Save(ctx context.Context, records []*workout.Workout) error {
	flat := make([]workout.Flat, len(records))
	for i, w := range records {
		flat[i] = w.Flatten()
	}
	data, err := json.Marshal(flat)
	if err != nil {
		return fmt.Errorf("serializing workouts: %w", err)
	}
	if err := a.blobs.Put(ctx, a.key, data); err != nil {
		return fmt.Errorf("persisting workouts: %w", err)
	}
	return nil
}

// Load reads and restores the collection in persisted order. An absent key,
// a malformed blob, or an unrestorable record all degrade to the empty
// collection: empty state is the recovery policy, never an error.
func (a *Archive) Load(ctx context.Context) []*workout.Workout {
	data, ok, err := a.blobs.Get(ctx, a.key)
	if err != nil {
		a.log.Warn("reading workout blob failed, starting empty", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var flat []workout.Flat
	if err := json.Unmarshal(data, &flat); err != nil {
		a.log.Warn("workout blob is malformed, starting empty", "error", err)
		return nil
	}

	records := make([]*workout.Workout, 0, len(flat))
	for _, f := range flat {
		w, err := workout.Restore(f)
		if err != nil {
			a.log.Warn("workout blob has an unrestorable record, starting empty", "error", err)
			return nil
		}
		records = append(records, w)
	}
	return records
}

// Clear removes the blob entirely.
func (a *Archive) Clear(ctx context.Context) error {
	if err := a.blobs.Delete(ctx, a.key); err != nil {
		return fmt.Errorf("clearing workouts: %w", err)
	}
	return nil
}
