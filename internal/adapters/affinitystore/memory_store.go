package affinitystore

import (
	"context"

	"fleet-assignment-service/internal/domain"
)

// Memory is an in-memory AffinityStore used by tests and by deployments that
// do not need affinity continuity across restarts.
type Memory struct {
	data map[string][]domain.AffinityEntry

	// FailLoad and FailSave force errors, letting tests exercise the
	// tracker's degrade-and-continue behavior.
	FailLoad error
	FailSave error
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]domain.AffinityEntry)}
}

func (m *Memory) Load(ctx context.Context) (map[string][]domain.AffinityEntry, error) {
	if m.FailLoad != nil {
		return nil, m.FailLoad
	}
	return copyAffinities(m.data), nil
}

func (m *Memory) Save(ctx context.Context, affinities map[string][]domain.AffinityEntry) error {
	if m.FailSave != nil {
		return m.FailSave
	}
	m.data = copyAffinities(affinities)
	return nil
}

func copyAffinities(in map[string][]domain.AffinityEntry) map[string][]domain.AffinityEntry {
	out := make(map[string][]domain.AffinityEntry, len(in))
	for key, entries := range in {
		cp := make([]domain.AffinityEntry, len(entries))
		copy(cp, entries)
		out[key] = cp
	}
	return out
}
