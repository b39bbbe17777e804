package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"fleet-assignment-service/internal/api/dto"
	"fleet-assignment-service/internal/domain"
	"fleet-assignment-service/internal/services"
)

// AssignmentHandler owns the current planning batch. One engine serves one
// batch; posting a new batch discards the previous engine and its
// authorization ledger. The mutex serializes runs — the engine itself is
// single-threaded by design.
type AssignmentHandler struct {
	Capacities domain.CapacityTable
	Tracker    *services.AffinityTracker
	Log        zerolog.Logger

	mu     sync.Mutex
	engine *services.AssignmentEngine
}

// Run handles POST /assignments: build a fresh engine from the fleet
// snapshot and assign the supplied routes. GET returns the current batch.
func (h *AssignmentHandler) Run(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.current(w, r)
	case http.MethodPost:
		h.run(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *AssignmentHandler) run(w http.ResponseWriter, r *http.Request) {
	var req dto.RunBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if len(req.Routes) == 0 {
		writeError(w, r, http.StatusBadRequest, "routes must not be empty")
		return
	}
	if len(req.Fleet) == 0 {
		writeError(w, r, http.StatusBadRequest, "fleet must not be empty")
		return
	}

	fleet := make([]domain.Vehicle, 0, len(req.Fleet))
	for _, v := range req.Fleet {
		fleet = append(fleet, domain.Vehicle{
			VIN:               v.VIN,
			ServiceType:       v.ServiceType,
			VehicleName:       v.VehicleName,
			OperationalStatus: v.OperationalStatus,
		})
	}

	routes := make([]domain.RouteRequest, 0, len(req.Routes))
	for _, rt := range req.Routes {
		routes = append(routes, domain.RouteRequest{
			RouteCode:       rt.RouteCode,
			ServiceType:     rt.ServiceType,
			DSP:             rt.DSP,
			WaveTime:        rt.WaveTime,
			StagingLocation: rt.StagingLocation,
			DurationMinutes: rt.DurationMinutes,
			PackageCount:    rt.PackageCount,
			ZoneCount:       rt.ZoneCount,
		})
	}

	drivers := make([]domain.DriverRecord, 0, len(req.Drivers))
	for _, d := range req.Drivers {
		drivers = append(drivers, domain.DriverRecord{
			TransporterID: d.TransporterID,
			DriverName:    d.DriverName,
			DSP:           d.DSP,
			RouteCode:     d.RouteCode,
			ServiceType:   d.ServiceType,
		})
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.engine = services.NewAssignmentEngine(fleet, h.Capacities, h.Tracker, h.Log)
	assignments := h.engine.AssignRoutes(r.Context(), routes, drivers)

	writeJSON(w, r, http.StatusOK, dto.RunBatchResponse{
		Status:      toStatusResponse(h.engine.AssignmentStatus()),
		Assignments: toAssignmentResponses(assignments),
	})
}

func (h *AssignmentHandler) current(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.engine == nil {
		writeError(w, r, http.StatusNotFound, "no assignment batch has been run")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RunBatchResponse{
		Status:      toStatusResponse(h.engine.AssignmentStatus()),
		Assignments: toAssignmentResponses(h.engine.Assignments()),
	})
}

// Status handles GET /assignments/status.
func (h *AssignmentHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.engine == nil {
		writeError(w, r, http.StatusNotFound, "no assignment batch has been run")
		return
	}
	writeJSON(w, r, http.StatusOK, toStatusResponse(h.engine.AssignmentStatus()))
}

// Capacity handles GET /assignments/capacity: advisory utilization per
// service type plus per-vehicle load alerts.
func (h *AssignmentHandler) Capacity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.engine == nil {
		writeError(w, r, http.StatusNotFound, "no assignment batch has been run")
		return
	}

	res := dto.CapacityStatusResponse{
		ServiceTypes: []dto.ServiceTypeUsageResponse{},
		LoadAlerts:   []dto.LoadAlertResponse{},
	}
	for _, u := range h.engine.CapacityStatus() {
		res.ServiceTypes = append(res.ServiceTypes, dto.ServiceTypeUsageResponse{
			ServiceType:      u.ServiceType,
			VehiclesAssigned: u.VehiclesAssigned,
			CommittedBags:    u.CommittedBags,
			MaxBags:          u.MaxBags,
			UtilizationPct:   u.UtilizationPct,
			Alert:            u.Alert,
		})
	}
	for _, a := range h.engine.CheckLoads() {
		res.LoadAlerts = append(res.LoadAlerts, dto.LoadAlertResponse{
			VIN:         a.VIN,
			VehicleName: a.VehicleName,
			ServiceType: a.ServiceType,
			Bags:        a.Bags,
			MaxBags:     a.MaxBags,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Authorize handles POST /assignments/authorize: record a human-approved
// electric-constraint exception, optionally re-running the batch so the
// route can pick up its vehicle.
func (h *AssignmentHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.AuthorizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RouteCode == "" {
		writeError(w, r, http.StatusBadRequest, "route_code is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.engine == nil {
		writeError(w, r, http.StatusNotFound, "no assignment batch has been run")
		return
	}

	h.engine.Authorize(req.RouteCode)
	if req.Rerun {
		if _, err := h.engine.Rerun(r.Context()); err != nil {
			writeError(w, r, http.StatusConflict, err.Error())
			return
		}
	}
	writeJSON(w, r, http.StatusOK, toStatusResponse(h.engine.AssignmentStatus()))
}

// Override handles POST /assignments/override: force-bind a vehicle to a
// route by VIN, bypassing service-type matching and the electric check.
func (h *AssignmentHandler) Override(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OverrideRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RouteCode == "" || req.VIN == "" {
		writeError(w, r, http.StatusBadRequest, "route_code and vin are required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.engine == nil {
		writeError(w, r, http.StatusNotFound, "no assignment batch has been run")
		return
	}

	a, err := h.engine.Override(r.Context(), req.RouteCode, req.VIN)
	switch {
	case errors.Is(err, services.ErrUnknownRoute):
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, services.ErrVehicleUnavailable):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.Log.Error().Err(err).Msg("manual override failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toAssignmentResponse(a))
}

// decodeBody enforces the strict single-JSON-object body contract shared by
// all POST endpoints.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func toAssignmentResponse(a domain.RouteAssignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		RouteCode:       a.RouteCode,
		VehicleVIN:      a.VehicleVIN,
		VehicleName:     a.VehicleName,
		ServiceType:     a.ServiceType,
		DriverName:      a.DriverName,
		DriverID:        a.DriverID,
		DSP:             a.DSP,
		WaveTime:        a.WaveTime,
		DurationMinutes: a.DurationMinutes,
		PackageCount:    a.PackageCount,
	}
}

func toAssignmentResponses(assignments map[string]domain.RouteAssignment) map[string]dto.AssignmentResponse {
	out := make(map[string]dto.AssignmentResponse, len(assignments))
	for code, a := range assignments {
		out[code] = toAssignmentResponse(a)
	}
	return out
}

func toStatusResponse(s services.AssignmentStatus) dto.StatusResponse {
	res := dto.StatusResponse{
		BatchID:              s.BatchID,
		TotalRoutes:          s.TotalRoutes,
		Assigned:             s.Assigned,
		Failed:               s.Failed,
		FallbackUsed:         s.FallbackUsed,
		SuccessRate:          s.SuccessRate,
		FailedRoutes:         []dto.FailedRouteResponse{},
		Fallbacks:            []dto.FallbackResponse{},
		PendingViolations:    []dto.ViolationResponse{},
		AuthorizedViolations: []dto.ViolationResponse{},
	}
	for _, f := range s.FailedRoutes {
		res.FailedRoutes = append(res.FailedRoutes, dto.FailedRouteResponse{RouteCode: f.RouteCode, Reason: f.Reason})
	}
	for _, f := range s.Fallbacks {
		res.Fallbacks = append(res.Fallbacks, dto.FallbackResponse{
			RouteCode:     f.RouteCode,
			RequestedType: f.RequestedType,
			AssignedType:  f.AssignedType,
		})
	}
	res.PendingViolations = toViolationResponses(s.PendingViolations)
	res.AuthorizedViolations = toViolationResponses(s.AuthorizedViolations)
	return res
}

func toViolationResponses(reports []services.ViolationReport) []dto.ViolationResponse {
	out := make([]dto.ViolationResponse, 0, len(reports))
	for _, v := range reports {
		out = append(out, dto.ViolationResponse{
			RouteCode:          v.RouteCode,
			VehicleName:        v.VehicleName,
			VehicleServiceType: v.VehicleServiceType,
			RouteServiceType:   v.RouteServiceType,
			Message:            v.Message,
		})
	}
	return out
}
