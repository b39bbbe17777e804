package domain

// Represents a single fleet unit. Grounded vehicles are already excluded by
// the fleet ingest, so every Vehicle handed to the engine is assignable.
type Vehicle struct {
	VIN               string
	ServiceType       string
	VehicleName       string
	OperationalStatus string
}
