package handlers

import (
	"net/http"
	"sort"

	"fleet-assignment-service/internal/api/dto"
	"fleet-assignment-service/internal/domain"
)

// CapacityHandler exposes the static capacity table.
type CapacityHandler struct {
	Table domain.CapacityTable
}

// List handles GET /capacities: the capacity table without aliases.
func (h *CapacityHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := dto.ListCapacitiesResponse{
		Capacities: make([]dto.CapacityProfileResponse, 0, len(h.Table)),
	}
	for serviceType, p := range h.Table {
		res.Capacities = append(res.Capacities, dto.CapacityProfileResponse{
			ServiceType:   serviceType,
			MaxBags:       p.MaxBags,
			CubicCapacity: p.CubicCapacity,
			Electric:      p.Electric,
		})
	}
	sort.Slice(res.Capacities, func(i, j int) bool {
		return res.Capacities[i].ServiceType < res.Capacities[j].ServiceType
	})

	writeJSON(w, r, http.StatusOK, res)
}
