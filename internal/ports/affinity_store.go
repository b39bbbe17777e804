package ports

import (
	"context"

	"fleet-assignment-service/internal/domain"
)

// Port: a boundary for the durable driver-vehicle affinity state.
//
// The store holds the full affinity map keyed by domain.AffinityKey. The
// tracker reads it once at startup and writes whole snapshots; there is no
// partial-update operation, which keeps the at-most-one-writer contract
// simple across the file, Postgres, and Redis adapters.
type AffinityStore interface {
	// Load returns the complete affinity map. A missing or empty backing
	// store yields an empty map, not an error.
	Load(ctx context.Context) (map[string][]domain.AffinityEntry, error)

	// Save replaces the stored affinity map with the given snapshot.
	Save(ctx context.Context, affinities map[string][]domain.AffinityEntry) error
}
