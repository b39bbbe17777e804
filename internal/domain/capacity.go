package domain

import "strings"

// Static per-service-type load ceiling. MaxBags and CubicCapacity are the two
// physical dimensions a van is constrained by; Electric marks vehicle types
// reserved for electric-designated routes.
type CapacityProfile struct {
	MaxBags       int
	CubicCapacity float64
	Electric      bool
	Aliases       []string
}

// CapacityTable maps canonical service-type names to their load profiles.
// The table is fixed at process start and never mutated.
type CapacityTable map[string]CapacityProfile

// DefaultThresholdPct is the advisory fill level at which a van is considered
// effectively full.
const DefaultThresholdPct = 85.0

// CapacityAlertPct is the utilization level at which the capacity status
// report flags a service type.
const CapacityAlertPct = 80.0

// DefaultCapacityTable returns the built-in capacity data. Bag counts are
// off-peak limits; cubic values are bag-aware cubic capacity in cubic feet.
func DefaultCapacityTable() CapacityTable {
	return CapacityTable{
		"Small Van": {
			MaxBags: 16, CubicCapacity: 168.62,
			Aliases: []string{"small van"},
		},
		"Standard Parcel - Custom Delivery Van 14ft": {
			MaxBags: 43, CubicCapacity: 501.21,
			Aliases: []string{"cdv14", "custom delivery van 14ft", "custom delivery van 14", "cdv 14"},
		},
		"Standard Parcel - Custom Delivery Van 16ft": {
			MaxBags: 48, CubicCapacity: 579.89,
			Aliases: []string{"cdv16", "custom delivery van 16ft", "custom delivery van 16", "cdv 16"},
		},
		"Standard Parcel - Extra Large Van - US": {
			MaxBags: 22, CubicCapacity: 286.96,
			Aliases: []string{"extra large van", "extra large van - us", "elv"},
		},
		"Large Van": {
			MaxBags: 20, CubicCapacity: 257.54,
			Aliases: []string{"large van"},
		},
		"Standard Parcel": {
			MaxBags: 20, CubicCapacity: 251.20,
			Aliases: []string{"standard parcel"},
		},
		"4WD P31 Delivery Truck": {
			MaxBags: 20, CubicCapacity: 251.20,
			Aliases: []string{"4wd p31", "p31", "4wd p31 delivery truck"},
		},
		"Electric Step Van - XL": {
			MaxBags: 56, CubicCapacity: 625.51, Electric: true,
			Aliases: []string{"step van", "electric step van", "electric step van - xl", "step van xl"},
		},
		"Electric Cargo Van - M": {
			MaxBags: 20, CubicCapacity: 251.20, Electric: true,
			Aliases: []string{"electric cargo van - m", "electric cargo van m", "cargo van m"},
		},
		"Electric Cargo Van - L": {
			MaxBags: 22, CubicCapacity: 286.96, Electric: true,
			Aliases: []string{"electric cargo van - l", "electric cargo van l", "cargo van l"},
		},
		"Rivian SMALL": {
			MaxBags: 27, CubicCapacity: 280.47, Electric: true,
			Aliases: []string{"rivian small", "rivian s", "rivian mini"},
		},
		"Rivian MEDIUM": {
			MaxBags: 36, CubicCapacity: 370.07, Electric: true,
			Aliases: []string{"rivian medium", "rivian m", "rivian med"},
		},
		"Rivian LARGE": {
			MaxBags: 48, CubicCapacity: 579.89, Electric: true,
			Aliases: []string{"rivian large", "rivian l"},
		},
	}
}

// CapacityFor resolves a service type to its profile: exact match first, then
// a case-insensitive alias lookup. The second return is false for unknown
// types, which callers must treat as "no limit enforced".
func (t CapacityTable) CapacityFor(serviceType string) (CapacityProfile, bool) {
	if p, ok := t[serviceType]; ok {
		return p, true
	}

	needle := strings.ToLower(strings.TrimSpace(serviceType))
	for _, p := range t {
		for _, alias := range p.Aliases {
			if needle == strings.ToLower(alias) {
				return p, true
			}
		}
	}

	return CapacityProfile{}, false
}

// IsElectric reports whether a vehicle service type is classified electric.
// Unknown types are treated as non-electric.
func (t CapacityTable) IsElectric(serviceType string) bool {
	p, ok := t.CapacityFor(serviceType)
	return ok && p.Electric
}

// RouteIsElectricDesignated reports whether a route's own service-type label
// denotes an electric requirement. This is a substring match on the
// electric-vehicle family names and is independent of vehicle classification;
// it is what the constraint check compares against.
func RouteIsElectricDesignated(serviceType string) bool {
	s := strings.ToLower(serviceType)
	return strings.Contains(s, "electric") || strings.Contains(s, "rivian")
}

// Fill level of a van relative to its profile.
type CapacityUsage struct {
	BagPct         float64
	CubicPct       float64
	MaxBags        int
	MaxCubic       float64
	BagsRemaining  int
	CubicRemaining float64
}

// PercentFull computes how full a van of the given service type is. A
// zero-capacity dimension yields 0%, never a division error. The second
// return is false for unknown types.
func (t CapacityTable) PercentFull(serviceType string, currentBags int, currentCubic float64) (CapacityUsage, bool) {
	p, ok := t.CapacityFor(serviceType)
	if !ok {
		return CapacityUsage{}, false
	}

	u := CapacityUsage{
		MaxBags:  p.MaxBags,
		MaxCubic: p.CubicCapacity,
	}
	if p.MaxBags > 0 {
		u.BagPct = float64(currentBags) / float64(p.MaxBags) * 100
	}
	if p.CubicCapacity > 0 {
		u.CubicPct = currentCubic / p.CubicCapacity * 100
	}
	if rem := p.MaxBags - currentBags; rem > 0 {
		u.BagsRemaining = rem
	}
	if rem := p.CubicCapacity - currentCubic; rem > 0 {
		u.CubicRemaining = rem
	}

	return u, true
}

// AtThreshold reports whether a van is at or above the given fill threshold.
// Either dimension saturating is operationally binding, so this is an OR over
// bag and cubic percentages. Unknown types never hit the threshold.
func (t CapacityTable) AtThreshold(serviceType string, currentBags int, currentCubic, thresholdPct float64) bool {
	u, ok := t.PercentFull(serviceType, currentBags, currentCubic)
	if !ok {
		return false
	}
	return u.BagPct >= thresholdPct || u.CubicPct >= thresholdPct
}

// OverCapacity reports whether either raw count exceeds its limit.
// Unknown types are never over capacity.
func (t CapacityTable) OverCapacity(serviceType string, currentBags int, currentCubic float64) bool {
	p, ok := t.CapacityFor(serviceType)
	if !ok {
		return false
	}
	return currentBags > p.MaxBags || currentCubic > p.CubicCapacity
}
