package affinitystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fleet-assignment-service/internal/domain"
)

// File is a JSON-file-backed AffinityStore. The file layout — an object
// keyed by "<driver>|<serviceType>" with entry arrays — is an external
// contract for affinity continuity across process restarts.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

// Load reads the affinity file. A missing file is an empty store.
func (f *File) Load(ctx context.Context) (map[string][]domain.AffinityEntry, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string][]domain.AffinityEntry{}, nil
		}
		return nil, fmt.Errorf("affinity file: read %s: %w", f.Path, err)
	}

	var affinities map[string][]domain.AffinityEntry
	if err := json.Unmarshal(raw, &affinities); err != nil {
		return nil, fmt.Errorf("affinity file: decode %s: %w", f.Path, err)
	}
	if affinities == nil {
		affinities = map[string][]domain.AffinityEntry{}
	}
	return affinities, nil
}

// Save writes the snapshot via a temp file and rename so a crash mid-write
// never truncates the previous state.
func (f *File) Save(ctx context.Context, affinities map[string][]domain.AffinityEntry) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("affinity file: create dir for %s: %w", f.Path, err)
	}

	raw, err := json.MarshalIndent(affinities, "", "  ")
	if err != nil {
		return fmt.Errorf("affinity file: encode: %w", err)
	}

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("affinity file: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		return fmt.Errorf("affinity file: rename %s: %w", tmp, err)
	}
	return nil
}
