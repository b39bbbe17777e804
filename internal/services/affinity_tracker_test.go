package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fleet-assignment-service/internal/adapters/affinitystore"
)

func newTestTracker(t *testing.T) (*AffinityTracker, *affinitystore.Memory) {
	t.Helper()
	store := affinitystore.NewMemory()
	return NewAffinityTracker(context.Background(), store, zerolog.Nop()), store
}

func TestRecordAssignmentIncrements(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	tr.RecordAssignment(ctx, "alice", "R-101", "Rivian MEDIUM", "CX001")
	tr.RecordAssignment(ctx, "alice", "R-101", "Rivian MEDIUM", "CX009")

	if got := tr.AffinityStrength("alice", "R-101", "Rivian MEDIUM"); got != 2 {
		t.Fatalf("AffinityStrength = %d, want 2", got)
	}

	summary := tr.DriverSummary("alice")
	if len(summary) != 1 {
		t.Fatalf("summary length = %d, want 1", len(summary))
	}
	if summary[0].RouteCount != 2 {
		t.Fatalf("RouteCount = %d, want 2", summary[0].RouteCount)
	}
}

func TestRecordAssignmentIgnoresBlankFields(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	tr.RecordAssignment(ctx, "", "R-101", "Rivian MEDIUM", "CX001")
	tr.RecordAssignment(ctx, "alice", "", "Rivian MEDIUM", "CX001")

	if got := len(tr.DriverSummary("alice")); got != 0 {
		t.Fatalf("summary length = %d, want 0", got)
	}
}

func TestPreferredVehicleLookbackWindow(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	tr.now = func() time.Time { return base.AddDate(0, 0, -8) }
	tr.RecordAssignment(ctx, "alice", "R-101", "Rivian MEDIUM", "CX001")

	tr.now = func() time.Time { return base }
	if got := tr.PreferredVehicle("alice", "Rivian MEDIUM", DefaultAffinityDaysBack); got != "" {
		t.Fatalf("stale pairing returned %q, want none", got)
	}

	tr.now = func() time.Time { return base.AddDate(0, 0, -3) }
	tr.RecordAssignment(ctx, "alice", "R-102", "Rivian MEDIUM", "CX002")

	tr.now = func() time.Time { return base }
	if got := tr.PreferredVehicle("alice", "Rivian MEDIUM", DefaultAffinityDaysBack); got != "R-102" {
		t.Fatalf("PreferredVehicle = %q, want R-102", got)
	}
}

func TestPreferredVehicleRanking(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	// R-101 used twice but earlier; R-102 used once, more recently.
	tr.now = func() time.Time { return base.Add(-48 * time.Hour) }
	tr.RecordAssignment(ctx, "alice", "R-101", "Rivian MEDIUM", "CX001")
	tr.RecordAssignment(ctx, "alice", "R-101", "Rivian MEDIUM", "CX002")

	tr.now = func() time.Time { return base.Add(-1 * time.Hour) }
	tr.RecordAssignment(ctx, "alice", "R-102", "Rivian MEDIUM", "CX003")

	tr.now = func() time.Time { return base }
	if got := tr.PreferredVehicle("alice", "Rivian MEDIUM", DefaultAffinityDaysBack); got != "R-101" {
		t.Fatalf("frequency should outrank recency, got %q", got)
	}

	// Tie on frequency goes to the most recently used vehicle.
	tr.now = func() time.Time { return base.Add(-30 * time.Minute) }
	tr.RecordAssignment(ctx, "alice", "R-102", "Rivian MEDIUM", "CX004")

	tr.now = func() time.Time { return base }
	if got := tr.PreferredVehicle("alice", "Rivian MEDIUM", DefaultAffinityDaysBack); got != "R-102" {
		t.Fatalf("recency tie-break failed, got %q", got)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	tr.now = func() time.Time { return base.AddDate(0, 0, -40) }
	tr.RecordAssignment(ctx, "alice", "R-101", "Rivian MEDIUM", "CX001")

	tr.now = func() time.Time { return base.AddDate(0, 0, -2) }
	tr.RecordAssignment(ctx, "bob", "R-201", "Large Van", "CX002")

	tr.now = func() time.Time { return base }
	if removed := tr.PurgeOlderThan(ctx, 30); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	if got := len(tr.DriverSummary("alice")); got != 0 {
		t.Fatalf("alice summary length = %d after purge, want 0", got)
	}
	if got := len(tr.DriverSummary("bob")); got != 1 {
		t.Fatalf("bob summary length = %d after purge, want 1", got)
	}
}

func TestTrackerStartsEmptyOnLoadFailure(t *testing.T) {
	store := affinitystore.NewMemory()
	store.FailLoad = errors.New("backend down")

	tr := NewAffinityTracker(context.Background(), store, zerolog.Nop())
	if got := tr.PreferredVehicle("alice", "Rivian MEDIUM", DefaultAffinityDaysBack); got != "" {
		t.Fatalf("PreferredVehicle = %q on empty tracker, want none", got)
	}
}

func TestTrackerKeepsStateOnSaveFailure(t *testing.T) {
	tr, store := newTestTracker(t)
	store.FailSave = errors.New("backend down")
	ctx := context.Background()

	tr.RecordAssignment(ctx, "alice", "R-101", "Rivian MEDIUM", "CX001")

	// In-memory state survives even though persistence failed.
	if got := tr.AffinityStrength("alice", "R-101", "Rivian MEDIUM"); got != 1 {
		t.Fatalf("AffinityStrength = %d after failed save, want 1", got)
	}
}

func TestDeferredSaveBatchesWrites(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	tr.SetDeferSave(true)
	tr.RecordAssignment(ctx, "alice", "R-101", "Rivian MEDIUM", "CX001")
	tr.RecordAssignment(ctx, "bob", "R-201", "Large Van", "CX002")

	persisted, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(persisted) != 0 {
		t.Fatalf("store has %d keys before Flush, want 0", len(persisted))
	}

	tr.Flush(ctx)

	persisted, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("store has %d keys after Flush, want 2", len(persisted))
	}
}
