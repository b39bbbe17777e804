package domain

// Optional enrichment record linking a route to a driver, keyed by route code.
type DriverRecord struct {
	TransporterID string
	DriverName    string
	DSP           string
	RouteCode     string
	ServiceType   string
}
