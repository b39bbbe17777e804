package dto

type VehicleRequest struct {
	VIN               string `json:"vin"`
	ServiceType       string `json:"service_type"`
	VehicleName       string `json:"vehicle_name"`
	OperationalStatus string `json:"operational_status"`
}

type RouteRequest struct {
	RouteCode       string `json:"route_code"`
	ServiceType     string `json:"service_type"`
	DSP             string `json:"dsp"`
	WaveTime        string `json:"wave_time"`
	StagingLocation string `json:"staging_location"`
	DurationMinutes int    `json:"duration_minutes"`
	PackageCount    int    `json:"package_count"`
	ZoneCount       int    `json:"zone_count"`
}

type DriverRequest struct {
	TransporterID string `json:"transporter_id"`
	DriverName    string `json:"driver_name"`
	DSP           string `json:"dsp"`
	RouteCode     string `json:"route_code"`
	ServiceType   string `json:"service_type"`
}

type RunBatchRequest struct {
	Fleet   []VehicleRequest `json:"fleet"`
	Routes  []RouteRequest   `json:"routes"`
	Drivers []DriverRequest  `json:"drivers"`
}

type AssignmentResponse struct {
	RouteCode       string `json:"route_code"`
	VehicleVIN      string `json:"vehicle_vin"`
	VehicleName     string `json:"vehicle_name"`
	ServiceType     string `json:"service_type"`
	DriverName      string `json:"driver_name,omitempty"`
	DriverID        string `json:"driver_id,omitempty"`
	DSP             string `json:"dsp,omitempty"`
	WaveTime        string `json:"wave_time,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	PackageCount    int    `json:"package_count,omitempty"`
}

type FailedRouteResponse struct {
	RouteCode string `json:"route_code"`
	Reason    string `json:"reason"`
}

type FallbackResponse struct {
	RouteCode     string `json:"route_code"`
	RequestedType string `json:"requested_type"`
	AssignedType  string `json:"assigned_type"`
}

type ViolationResponse struct {
	RouteCode          string `json:"route_code"`
	VehicleName        string `json:"vehicle_name"`
	VehicleServiceType string `json:"vehicle_service_type"`
	RouteServiceType   string `json:"route_service_type"`
	Message            string `json:"message"`
}

type StatusResponse struct {
	BatchID              string                `json:"batch_id"`
	TotalRoutes          int                   `json:"total_routes"`
	Assigned             int                   `json:"assigned"`
	Failed               int                   `json:"failed"`
	FallbackUsed         int                   `json:"fallback_used"`
	SuccessRate          float64               `json:"success_rate"`
	FailedRoutes         []FailedRouteResponse `json:"failed_routes"`
	Fallbacks            []FallbackResponse    `json:"fallback_routes"`
	PendingViolations    []ViolationResponse   `json:"pending_violations"`
	AuthorizedViolations []ViolationResponse   `json:"authorized_violations"`
}

type RunBatchResponse struct {
	Status      StatusResponse                `json:"status"`
	Assignments map[string]AssignmentResponse `json:"assignments"`
}

type ServiceTypeUsageResponse struct {
	ServiceType      string  `json:"service_type"`
	VehiclesAssigned int     `json:"vehicles_assigned"`
	CommittedBags    int     `json:"committed_bags"`
	MaxBags          int     `json:"max_bags"`
	UtilizationPct   float64 `json:"utilization_pct"`
	Alert            bool    `json:"alert"`
}

type LoadAlertResponse struct {
	VIN         string `json:"vin"`
	VehicleName string `json:"vehicle_name"`
	ServiceType string `json:"service_type"`
	Bags        int    `json:"bags"`
	MaxBags     int    `json:"max_bags"`
}

type CapacityStatusResponse struct {
	ServiceTypes []ServiceTypeUsageResponse `json:"service_types"`
	LoadAlerts   []LoadAlertResponse        `json:"load_alerts"`
}

type OverrideRequest struct {
	RouteCode string `json:"route_code"`
	VIN       string `json:"vin"`
}

type AuthorizeRequest struct {
	RouteCode string `json:"route_code"`
	Rerun     bool   `json:"rerun"`
}
