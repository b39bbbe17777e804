package dto

type CapacityProfileResponse struct {
	ServiceType   string  `json:"service_type"`
	MaxBags       int     `json:"max_bags"`
	CubicCapacity float64 `json:"cubic_capacity"`
	Electric      bool    `json:"is_electric"`
}

type ListCapacitiesResponse struct {
	Capacities []CapacityProfileResponse `json:"capacities"`
}
