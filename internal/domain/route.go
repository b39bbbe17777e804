package domain

// Represents one route from the day-of-plan needing a vehicle and driver.
// Route records are produced by upstream ingest and are read-only to the
// assignment engine.
type RouteRequest struct {
	RouteCode       string
	ServiceType     string
	DSP             string
	WaveTime        string
	StagingLocation string
	DurationMinutes int
	PackageCount    int
	ZoneCount       int
}
