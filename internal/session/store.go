// Package session holds the in-memory workout collection for the current
// run of the application. Insertion order is creation order; the store is
// the single source of truth between hydration and persistence.
package session

import (
	"sync"

	"github.com/meltforce/pacemap/internal/workout"
)

// Store is an ordered in-memory collection of workouts.
type Store struct {
	mu      sync.RWMutex
	records []*workout.Workout
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Append adds a record to the end of the collection.
func (s *Store) Append(w *workout.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, w)
}

// FindByID scans for a record by its ID. A miss returns ok=false; it is the
// caller's job to treat that as a no-op.
func (s *Store) FindByID(id int64) (*workout.Workout, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.records {
		if w.ID == id {
			return w, true
		}
	}
	return nil, false
}

// All returns the full collection in insertion order. The slice is a copy;
// the records themselves are shared and treated as immutable.
func (s *Store) All() []*workout.Workout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*workout.Workout, len(s.records))
	copy(out, s.records)
	return out
}

// ReplaceAll swaps the contents wholesale, preserving the input order.
// Used for hydration and for reset.
func (s *Store) ReplaceAll(records []*workout.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]*workout.Workout, len(records))
	copy(s.records, records)
}

// Len reports the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
