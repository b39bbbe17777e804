package affinitystore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fleet-assignment-service/internal/domain"
)

func sampleAffinities() map[string][]domain.AffinityEntry {
	used := time.Date(2026, 8, 30, 7, 15, 0, 0, time.UTC)
	return map[string][]domain.AffinityEntry{
		domain.AffinityKey("alice", "Rivian MEDIUM"): {
			{
				VehicleName: "R-101",
				ServiceType: "Rivian MEDIUM",
				FirstUsed:   used.AddDate(0, 0, -5),
				LastUsed:    used,
				Frequency:   3,
				Routes:      []string{"CX001", "CX004", "CX009"},
			},
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affinity.json")
	store := NewFile(path)
	ctx := context.Background()

	want := sampleAffinities()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	key := domain.AffinityKey("alice", "Rivian MEDIUM")
	entries := got[key]
	if len(entries) != 1 {
		t.Fatalf("entries = %+v, want 1", entries)
	}
	e := entries[0]
	if e.VehicleName != "R-101" || e.Frequency != 3 || len(e.Routes) != 3 {
		t.Fatalf("entry = %+v", e)
	}
	if !e.LastUsed.Equal(want[key][0].LastUsed) {
		t.Fatalf("LastUsed = %v, want %v", e.LastUsed, want[key][0].LastUsed)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := NewFile(filepath.Join(t.TempDir(), "does-not-exist.json"))

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d keys from missing file, want 0", len(got))
	}
}

func TestFileStoreCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "affinity.json")
	store := NewFile(path)

	if err := store.Save(context.Background(), sampleAffinities()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat saved file: %v", err)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affinity.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := NewFile(path).Load(context.Background()); err == nil {
		t.Fatal("corrupt file should surface a decode error")
	}
}
