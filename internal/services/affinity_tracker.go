package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fleet-assignment-service/internal/domain"
	"fleet-assignment-service/internal/ports"
)

// DefaultAffinityDaysBack is the lookback window for preferred-vehicle
// selection. Older-only pairings are treated as no preference.
const DefaultAffinityDaysBack = 7

// AffinityTracker remembers driver-vehicle pairings so drivers stay in
// familiar vehicles across days.
//
// State is held in memory and written through the injected store. By default
// every recorded assignment saves synchronously (at-most-one-writer
// assumption); SetDeferSave batches writes until Flush, which the engine uses
// to write durable state once per run.
type AffinityTracker struct {
	store      ports.AffinityStore
	log        zerolog.Logger
	now        func() time.Time
	deferSave  bool
	dirty      bool
	affinities map[string][]domain.AffinityEntry
}

// NewAffinityTracker loads existing affinity state from the store. A load
// failure is logged and the tracker starts empty: affinity is an
// optimization, not a correctness requirement, so the batch must not abort.
func NewAffinityTracker(ctx context.Context, store ports.AffinityStore, log zerolog.Logger) *AffinityTracker {
	t := &AffinityTracker{
		store:      store,
		log:        log,
		now:        time.Now,
		affinities: make(map[string][]domain.AffinityEntry),
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not load affinity data; starting empty")
		return t
	}
	if loaded != nil {
		t.affinities = loaded
	}
	return t
}

// SetDeferSave toggles batched persistence. With deferred saves enabled,
// RecordAssignment only marks state dirty and Flush performs the write.
func (t *AffinityTracker) SetDeferSave(deferSave bool) {
	t.deferSave = deferSave
}

// Flush writes pending affinity state to the store if anything changed.
func (t *AffinityTracker) Flush(ctx context.Context) {
	if !t.dirty {
		return
	}
	t.save(ctx)
}

// RecordAssignment records a successful driver-vehicle pairing. An existing
// entry for the same vehicle under the same key gets its frequency
// incremented, the route code appended, and its last-used timestamp bumped;
// otherwise a new entry is created with frequency 1.
func (t *AffinityTracker) RecordAssignment(ctx context.Context, driverName, vehicleName, serviceType, routeCode string) {
	if driverName == "" || vehicleName == "" || serviceType == "" {
		return
	}

	key := domain.AffinityKey(driverName, serviceType)
	now := t.now()

	entries := t.affinities[key]
	updated := false
	for i := range entries {
		if entries[i].VehicleName == vehicleName {
			entries[i].Frequency++
			entries[i].LastUsed = now
			entries[i].Routes = append(entries[i].Routes, routeCode)
			updated = true
			break
		}
	}
	if !updated {
		entries = append(entries, domain.AffinityEntry{
			VehicleName: vehicleName,
			ServiceType: serviceType,
			FirstUsed:   now,
			LastUsed:    now,
			Frequency:   1,
			Routes:      []string{routeCode},
		})
	}
	t.affinities[key] = entries

	t.dirty = true
	if !t.deferSave {
		t.save(ctx)
	}
}

// PreferredVehicle returns the vehicle a driver should be re-paired with for
// the given service type, or "" if there is no usable preference.
//
// Entries are ranked by descending frequency, tie-broken by most-recent
// last-used. Only entries used within daysBack days qualify; a stale affinity
// must not force an assignment.
func (t *AffinityTracker) PreferredVehicle(driverName, serviceType string, daysBack int) string {
	key := domain.AffinityKey(driverName, serviceType)
	entries := t.affinities[key]
	if len(entries) == 0 {
		return ""
	}

	ranked := make([]domain.AffinityEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Frequency != ranked[j].Frequency {
			return ranked[i].Frequency > ranked[j].Frequency
		}
		return ranked[i].LastUsed.After(ranked[j].LastUsed)
	})

	cutoff := t.now().AddDate(0, 0, -daysBack)
	for _, e := range ranked {
		if e.LastUsed.After(cutoff) {
			return e.VehicleName
		}
	}
	return ""
}

// AffinityStrength returns how many times a driver has used a vehicle under a
// service type, 0 if never. Diagnostics only; not on the selection path.
func (t *AffinityTracker) AffinityStrength(driverName, vehicleName, serviceType string) int {
	for _, e := range t.affinities[domain.AffinityKey(driverName, serviceType)] {
		if e.VehicleName == vehicleName {
			return e.Frequency
		}
	}
	return 0
}

// DriverSummary returns all recorded pairings for one driver across service
// types, ordered by descending frequency then vehicle name.
func (t *AffinityTracker) DriverSummary(driverName string) []domain.AffinitySummary {
	prefix := driverName + "|"

	var out []domain.AffinitySummary
	for key, entries := range t.affinities {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, e := range entries {
			out = append(out, domain.AffinitySummary{
				VehicleName: e.VehicleName,
				ServiceType: e.ServiceType,
				Frequency:   e.Frequency,
				LastUsed:    e.LastUsed,
				RouteCount:  len(e.Routes),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].VehicleName < out[j].VehicleName
	})
	return out
}

// PurgeOlderThan removes entries whose last-used predates the cutoff and
// deletes keys that become empty. Returns the number of entries removed.
// Maintenance only; the assignment path never calls this.
func (t *AffinityTracker) PurgeOlderThan(ctx context.Context, days int) int {
	cutoff := t.now().AddDate(0, 0, -days)
	removed := 0

	for key, entries := range t.affinities {
		kept := entries[:0]
		for _, e := range entries {
			if e.LastUsed.After(cutoff) {
				kept = append(kept, e)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(t.affinities, key)
			continue
		}
		t.affinities[key] = kept
	}

	if removed > 0 {
		t.dirty = true
		t.save(ctx)
	}
	return removed
}

func (t *AffinityTracker) save(ctx context.Context) {
	if err := t.store.Save(ctx, t.affinities); err != nil {
		// Affinity persistence failures never abort a batch.
		t.log.Warn().Err(err).Msg("could not save affinity data")
		return
	}
	t.dirty = false
}
