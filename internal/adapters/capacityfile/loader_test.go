package capacityfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capacities.yaml")
	data := `
Small Van:
  max_bags: 18
  cubic_capacity: 180.0
  aliases: ["small van"]
Seasonal Box Truck:
  max_bags: 60
  cubic_capacity: 700.0
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p, ok := table.CapacityFor("Small Van")
	if !ok || p.MaxBags != 18 {
		t.Fatalf("Small Van override = %+v/%v, want MaxBags 18", p, ok)
	}

	p, ok = table.CapacityFor("Seasonal Box Truck")
	if !ok || p.MaxBags != 60 {
		t.Fatalf("new type = %+v/%v, want MaxBags 60", p, ok)
	}

	// Types absent from the file keep their built-in profile.
	p, ok = table.CapacityFor("Rivian MEDIUM")
	if !ok || p.MaxBags != 36 || !p.Electric {
		t.Fatalf("default profile lost: %+v/%v", p, ok)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file should return an error")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capacities.yaml")
	if err := os.WriteFile(path, []byte(":\t not yaml ["), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml should return an error")
	}
}
