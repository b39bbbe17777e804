package domain

import "fmt"

// Represents one route bound to one vehicle. Assignments are immutable once
// emitted; a manual override replaces the whole record rather than mutating it.
type RouteAssignment struct {
	RouteCode       string
	VehicleVIN      string
	VehicleName     string
	ServiceType     string // service type actually used, which may be a fallback substitute
	DriverName      string
	DriverID        string
	DSP             string
	WaveTime        string
	DurationMinutes int
	PackageCount    int
}

// Records a route that could not be assigned, with the reason.
type FailedRoute struct {
	RouteCode string
	Reason    string
}

// Records a committed substitution: the route asked for RequestedType but was
// assigned a vehicle of AssignedType further down the fallback chain.
type FallbackUse struct {
	RouteCode     string
	RequestedType string
	AssignedType  string
}

// Records an electric-constraint breach: an electric vehicle would have been
// bound to a route that is not electric-designated, and the route was not
// authorized for an exception.
type Violation struct {
	RouteCode          string
	VehicleName        string
	VehicleServiceType string
	RouteServiceType   string
}

// Message renders the violation for operator-facing reports.
func (v Violation) Message() string {
	return fmt.Sprintf(
		"route %s: electric vehicle %s (%s) cannot serve non-electric route type %q without authorization",
		v.RouteCode, v.VehicleName, v.VehicleServiceType, v.RouteServiceType,
	)
}
