package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is the dedicated Prometheus registry for the service.
var Registry = prometheus.NewRegistry()

var (
	// RoutesAssigned counts committed route assignments.
	RoutesAssigned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_routes_assigned_total",
		Help: "Routes successfully bound to a vehicle.",
	})
	// RoutesFailed counts routes left unassigned after chain exhaustion.
	RoutesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_routes_failed_total",
		Help: "Routes with no available vehicle.",
	})
	// FallbacksUsed counts assignments committed on a substitute service type.
	FallbacksUsed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_fallbacks_total",
		Help: "Assignments that used a fallback service type.",
	})
	// ViolationsRecorded counts unauthorized electric-constraint breaches.
	ViolationsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_electric_violations_total",
		Help: "Electric-constraint violations recorded during matching.",
	})
	// OverridesApplied counts manual operator overrides.
	OverridesApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_manual_overrides_total",
		Help: "Manual override assignments applied by an operator.",
	})

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(RoutesAssigned)
		Registry.MustRegister(RoutesFailed)
		Registry.MustRegister(FallbacksUsed)
		Registry.MustRegister(ViolationsRecorded)
		Registry.MustRegister(OverridesApplied)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
