package handlers

import (
	"net/http"
	"strings"

	"fleet-assignment-service/internal/api/dto"
	"fleet-assignment-service/internal/services"
)

// AffinityHandler exposes driver-vehicle affinity summaries and maintenance.
type AffinityHandler struct {
	Tracker *services.AffinityTracker
}

// Summary handles GET /affinity/summary?driver=<name>.
func (h *AffinityHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	driver := strings.TrimSpace(r.URL.Query().Get("driver"))
	if driver == "" {
		writeError(w, r, http.StatusBadRequest, "driver query parameter is required")
		return
	}

	res := dto.DriverAffinityResponse{
		Driver:   driver,
		Pairings: []dto.AffinitySummaryResponse{},
	}
	for _, s := range h.Tracker.DriverSummary(driver) {
		res.Pairings = append(res.Pairings, dto.AffinitySummaryResponse{
			VehicleName: s.VehicleName,
			ServiceType: s.ServiceType,
			Frequency:   s.Frequency,
			LastUsed:    s.LastUsed,
			RouteCount:  s.RouteCount,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Purge handles POST /affinity/purge: remove stale pairings older than the
// requested number of days.
func (h *AffinityHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PurgeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Days < 1 {
		writeError(w, r, http.StatusBadRequest, "days must be at least 1")
		return
	}

	removed := h.Tracker.PurgeOlderThan(r.Context(), req.Days)
	writeJSON(w, r, http.StatusOK, dto.PurgeResponse{Removed: removed})
}
