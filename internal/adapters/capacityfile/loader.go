// Package capacityfile loads capacity-table overrides from YAML so load
// limits can be adjusted without a rebuild.
package capacityfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fleet-assignment-service/internal/domain"
)

type profileYAML struct {
	MaxBags       int      `yaml:"max_bags"`
	CubicCapacity float64  `yaml:"cubic_capacity"`
	Electric      bool     `yaml:"is_electric"`
	Aliases       []string `yaml:"aliases"`
}

// Load reads a YAML capacity file and overlays it on the built-in defaults.
// Service types present in the file replace their default profile wholesale;
// types absent from the file keep their defaults.
func Load(path string) (domain.CapacityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("capacity file: read %s: %w", path, err)
	}

	var overrides map[string]profileYAML
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("capacity file: decode %s: %w", path, err)
	}

	table := domain.DefaultCapacityTable()
	for serviceType, p := range overrides {
		table[serviceType] = domain.CapacityProfile{
			MaxBags:       p.MaxBags,
			CubicCapacity: p.CubicCapacity,
			Electric:      p.Electric,
			Aliases:       p.Aliases,
		}
	}
	return table, nil
}
