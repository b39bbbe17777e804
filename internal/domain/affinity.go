package domain

import "time"

// Historical usage of one vehicle by one driver under one service type.
//
// Entries are stored durably keyed by AffinityKey. The JSON field names are an
// external contract: the affinity file survives process restarts and is read
// by reporting tooling.
type AffinityEntry struct {
	VehicleName string    `json:"vehicle_name"`
	ServiceType string    `json:"service_type"`
	FirstUsed   time.Time `json:"first_used"`
	LastUsed    time.Time `json:"last_used"`
	Frequency   int       `json:"frequency"`
	Routes      []string  `json:"routes"`
}

// AffinityKey builds the durable-store key for a driver / service-type pair.
// The composition is exact and case-sensitive as stored.
func AffinityKey(driverName, serviceType string) string {
	return driverName + "|" + serviceType
}

// Per-pairing summary line for a driver, used by the affinity summary output.
type AffinitySummary struct {
	VehicleName string    `json:"vehicle_name"`
	ServiceType string    `json:"service_type"`
	Frequency   int       `json:"frequency"`
	LastUsed    time.Time `json:"last_used"`
	RouteCount  int       `json:"route_count"`
}
