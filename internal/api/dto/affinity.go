package dto

import "time"

type AffinitySummaryResponse struct {
	VehicleName string    `json:"vehicle_name"`
	ServiceType string    `json:"service_type"`
	Frequency   int       `json:"frequency"`
	LastUsed    time.Time `json:"last_used"`
	RouteCount  int       `json:"route_count"`
}

type DriverAffinityResponse struct {
	Driver   string                    `json:"driver"`
	Pairings []AffinitySummaryResponse `json:"pairings"`
}

type PurgeRequest struct {
	Days int `json:"days"`
}

type PurgeResponse struct {
	Removed int `json:"removed"`
}
