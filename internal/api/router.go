package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"fleet-assignment-service/internal/api/handlers"
	"fleet-assignment-service/internal/domain"
	"fleet-assignment-service/internal/platform/metrics"
	"fleet-assignment-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(capacities domain.CapacityTable, tracker *services.AffinityTracker, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	assignHandler := &handlers.AssignmentHandler{
		Capacities: capacities,
		Tracker:    tracker,
		Log:        log,
	}
	affinityHandler := &handlers.AffinityHandler{Tracker: tracker}
	capacityHandler := &handlers.CapacityHandler{Table: capacities}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/assignments", assignHandler.Run)
	mux.HandleFunc("/assignments/status", assignHandler.Status)
	mux.HandleFunc("/assignments/capacity", assignHandler.Capacity)
	mux.HandleFunc("/assignments/authorize", assignHandler.Authorize)
	mux.HandleFunc("/assignments/override", assignHandler.Override)
	mux.HandleFunc("/affinity/summary", affinityHandler.Summary)
	mux.HandleFunc("/affinity/purge", affinityHandler.Purge)
	mux.HandleFunc("/capacities", capacityHandler.List)

	metrics.RegisterDefault()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(mux)
}
