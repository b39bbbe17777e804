package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleet-assignment-service/internal/domain"
	"fleet-assignment-service/internal/platform/metrics"
)

// Service type fallback chain (primary first, then governance-defined
// substitutes, tried strictly in declared order).
var fallbackChain = map[string][]string{
	"Standard Parcel - Custom Delivery Van 14ft": {
		"Standard Parcel - Custom Delivery Van 14ft",
		"Standard Parcel - Custom Delivery Van 16ft",
		"Standard Parcel - Extra Large Van - US",
	},
	"Standard Parcel - Custom Delivery Van 16ft": {
		"Standard Parcel - Custom Delivery Van 16ft",
		"Standard Parcel - Extra Large Van - US",
	},
	"Standard Parcel - Extra Large Van - US": {
		"Standard Parcel - Extra Large Van - US",
		"Standard Parcel - Custom Delivery Van 16ft",
	},
	"4WD P31 Delivery Truck": {
		"4WD P31 Delivery Truck",
	},
	"Rivian MEDIUM": {
		"Rivian MEDIUM",
		"Rivian LARGE",
	},
	"Rivian LARGE": {
		"Rivian LARGE",
		// Downsize as fallback: doable for light routes.
		"Rivian MEDIUM",
	},
	"Electric Step Van - XL": {
		"Electric Step Van - XL",
		"Electric Cargo Van - L",
	},
	"Electric Cargo Van - M": {
		"Electric Cargo Van - M",
		"Electric Cargo Van - L",
	},
	"Electric Cargo Van - L": {
		"Electric Cargo Van - L",
		"Electric Step Van - XL",
	},
}

// Permissive default for unrecognized service types.
var defaultFallback = []string{
	"Standard Parcel - Extra Large Van - US",
	"Standard Parcel - Custom Delivery Van 16ft",
}

const reasonNoVehicle = "no available vehicle"

var (
	ErrNoBatch            = errors.New("no assignment batch has been run")
	ErrUnknownRoute       = errors.New("route code not in current batch")
	ErrVehicleUnavailable = errors.New("vehicle not available in pool")
	ErrRouteNotAssigned   = errors.New("route has no assignment to release")
)

// AssignmentEngine matches one batch of routes to fleet vehicles.
//
// For each route, in batch order: resolve the driver, try the driver's
// preferred vehicle, then walk the service-type fallback chain taking
// vehicles FIFO, evaluating the electric constraint identically on both
// paths. The engine is a deterministic greedy matcher, not an optimizer:
// no global cost minimization and no backtracking.
//
// One engine serves one planning cycle. It is single-threaded by design;
// callers must serialize runs and discard the engine to start a new batch
// from a fresh fleet snapshot.
type AssignmentEngine struct {
	batchID    string
	fleet      []domain.Vehicle
	capacities domain.CapacityTable
	tracker    *AffinityTracker
	log        zerolog.Logger

	pool         *VehiclePool
	routes       []domain.RouteRequest
	driverLookup map[string]domain.DriverRecord

	assignments map[string]domain.RouteAssignment
	failed      []domain.FailedRoute
	fallbacks   []domain.FallbackUse
	violations  []domain.Violation
	authorized  map[string]struct{}
	reinforced  map[string]string // route code -> vehicle already reinforced this cycle
	vanLoads    map[string]int    // VIN -> committed bag count
}

// NewAssignmentEngine builds an engine over a fleet snapshot. The affinity
// tracker is injected so tests can substitute an in-memory store.
func NewAssignmentEngine(fleet []domain.Vehicle, capacities domain.CapacityTable, tracker *AffinityTracker, log zerolog.Logger) *AssignmentEngine {
	return &AssignmentEngine{
		batchID:     uuid.NewString(),
		fleet:       fleet,
		capacities:  capacities,
		tracker:     tracker,
		log:         log,
		pool:        NewVehiclePool(fleet),
		assignments: make(map[string]domain.RouteAssignment),
		authorized:  make(map[string]struct{}),
		reinforced:  make(map[string]string),
		vanLoads:    make(map[string]int),
	}
}

// BatchID identifies this engine's planning cycle in reports and logs.
func (e *AssignmentEngine) BatchID() string { return e.batchID }

// Authorize records a human-approved exception to the electric constraint
// for one route. Idempotent. The ledger lives only as long as the engine.
func (e *AssignmentEngine) Authorize(routeCode string) {
	e.authorized[routeCode] = struct{}{}
}

// IsAuthorized reports whether a route has an approved electric exception.
func (e *AssignmentEngine) IsAuthorized(routeCode string) bool {
	_, ok := e.authorized[routeCode]
	return ok
}

// violatesElectricConstraint is one-directional: an electric vehicle on a
// route that is not electric-designated is restricted; a non-electric
// vehicle on an electric route is never flagged.
func (e *AssignmentEngine) violatesElectricConstraint(vehicleServiceType, routeServiceType string) bool {
	return e.capacities.IsElectric(vehicleServiceType) &&
		!domain.RouteIsElectricDesignated(routeServiceType)
}

// AssignRoutes processes the batch in the order routes are supplied and
// returns the route code -> assignment map. Failure, fallback-usage, and
// violation lists are rebuilt on every run; the authorization ledger
// survives so an operator can authorize a route and re-run.
func (e *AssignmentEngine) AssignRoutes(ctx context.Context, routes []domain.RouteRequest, drivers []domain.DriverRecord) map[string]domain.RouteAssignment {
	e.pool = NewVehiclePool(e.fleet)
	e.routes = routes
	e.assignments = make(map[string]domain.RouteAssignment, len(routes))
	e.failed = nil
	e.fallbacks = nil
	e.violations = nil
	e.vanLoads = make(map[string]int)

	e.driverLookup = make(map[string]domain.DriverRecord, len(drivers))
	for _, d := range drivers {
		e.driverLookup[d.RouteCode] = d
	}

	// Batch all affinity writes into one durable save at the end of the run.
	e.tracker.SetDeferSave(true)
	defer func() {
		e.tracker.Flush(ctx)
		e.tracker.SetDeferSave(false)
	}()

	for _, route := range routes {
		assignment, ok := e.assignRoute(ctx, route)
		if !ok {
			e.failed = append(e.failed, domain.FailedRoute{RouteCode: route.RouteCode, Reason: reasonNoVehicle})
			metrics.RoutesFailed.Inc()
			continue
		}
		e.commit(route, assignment)
	}

	e.log.Info().
		Str("batch_id", e.batchID).
		Int("routes", len(routes)).
		Int("assigned", len(e.assignments)).
		Int("failed", len(e.failed)).
		Int("fallbacks", len(e.fallbacks)).
		Int("violations", len(e.violations)).
		Msg("assignment run complete")

	return e.assignments
}

// Rerun repeats the last AssignRoutes call, typically after an operator has
// authorized an electric exception for a previously failed route.
func (e *AssignmentEngine) Rerun(ctx context.Context) (map[string]domain.RouteAssignment, error) {
	if e.routes == nil {
		return nil, ErrNoBatch
	}
	drivers := make([]domain.DriverRecord, 0, len(e.driverLookup))
	for _, d := range e.driverLookup {
		drivers = append(drivers, d)
	}
	return e.AssignRoutes(ctx, e.routes, drivers), nil
}

// assignRoute runs the decision sequence for one route: affinity attempt
// first, then the fallback chain. Returns false when every candidate type is
// exhausted.
func (e *AssignmentEngine) assignRoute(ctx context.Context, route domain.RouteRequest) (domain.RouteAssignment, bool) {
	driver, hasDriver := e.driverLookup[route.RouteCode]

	// Affinity attempt. A soft preference only: if the preferred vehicle
	// would breach the electric constraint without authorization, fall
	// through to the chain instead of failing the route.
	if hasDriver && driver.DriverName != "" {
		preferred := e.tracker.PreferredVehicle(driver.DriverName, route.ServiceType, DefaultAffinityDaysBack)
		if preferred != "" {
			if v, ok := e.pool.PeekByName(route.ServiceType, preferred); ok {
				if !e.violatesElectricConstraint(v.ServiceType, route.ServiceType) || e.IsAuthorized(route.RouteCode) {
					v, _ = e.pool.TakeByName(route.ServiceType, preferred)
					a := e.buildAssignment(route, v, route.ServiceType, driver, hasDriver)
					e.reinforceAffinity(ctx, driver.DriverName, v.VehicleName, route.ServiceType, route.RouteCode)
					return a, true
				}
			}
		}
	}

	// Fallback-chain traversal: each candidate type in declared order, FIFO
	// within a type. A candidate whose next vehicle breaches the electric
	// constraint is excluded entirely; same-type alternatives would breach
	// it identically.
	chain, known := fallbackChain[route.ServiceType]
	if !known {
		chain = defaultFallback
		e.log.Warn().
			Str("route_code", route.RouteCode).
			Str("service_type", route.ServiceType).
			Msg("unrecognized service type; using permissive default fallback chain")
	}

	for _, candidateType := range e.withElectricLastResort(chain) {
		v, ok := e.pool.Peek(candidateType)
		if !ok {
			continue
		}

		if e.violatesElectricConstraint(v.ServiceType, route.ServiceType) && !e.IsAuthorized(route.RouteCode) {
			e.violations = append(e.violations, domain.Violation{
				RouteCode:          route.RouteCode,
				VehicleName:        v.VehicleName,
				VehicleServiceType: v.ServiceType,
				RouteServiceType:   route.ServiceType,
			})
			metrics.ViolationsRecorded.Inc()
			continue
		}

		v, _ = e.pool.Take(candidateType)
		if candidateType != route.ServiceType {
			e.fallbacks = append(e.fallbacks, domain.FallbackUse{
				RouteCode:     route.RouteCode,
				RequestedType: route.ServiceType,
				AssignedType:  candidateType,
			})
			metrics.FallbacksUsed.Inc()
		}

		a := e.buildAssignment(route, v, candidateType, driver, hasDriver)
		if hasDriver && driver.DriverName != "" {
			e.reinforceAffinity(ctx, driver.DriverName, v.VehicleName, candidateType, route.RouteCode)
		}
		return a, true
	}

	return domain.RouteAssignment{}, false
}

// withElectricLastResort appends any electric vehicle types still in the
// pool after the declared chain, in sorted order. Electric vans are the
// scarce resource: a route its chain cannot serve may still take one, but
// only through the violation/authorization protocol the constraint check
// enforces. Non-electric types are never swept; that remains the manual
// override's territory.
func (e *AssignmentEngine) withElectricLastResort(chain []string) []string {
	seen := make(map[string]struct{}, len(chain))
	for _, t := range chain {
		seen[t] = struct{}{}
	}

	var extra []string
	for serviceType := range e.pool.Remaining() {
		if _, ok := seen[serviceType]; ok {
			continue
		}
		if e.capacities.IsElectric(serviceType) {
			extra = append(extra, serviceType)
		}
	}
	if len(extra) == 0 {
		return chain
	}
	sort.Strings(extra)

	out := make([]string, 0, len(chain)+len(extra))
	out = append(out, chain...)
	return append(out, extra...)
}

// reinforceAffinity records a driver-vehicle pairing at most once per route
// for the lifetime of the engine. A rerun reassigns the same routes, and
// recording them again would double frequencies and duplicate route codes in
// the durable store; new batches get a new engine, so day-over-day recurrence
// of the same route code still accumulates.
func (e *AssignmentEngine) reinforceAffinity(ctx context.Context, driverName, vehicleName, serviceType, routeCode string) {
	if e.reinforced[routeCode] == vehicleName {
		return
	}
	e.reinforced[routeCode] = vehicleName
	e.tracker.RecordAssignment(ctx, driverName, vehicleName, serviceType, routeCode)
}

func (e *AssignmentEngine) buildAssignment(route domain.RouteRequest, v domain.Vehicle, serviceType string, driver domain.DriverRecord, hasDriver bool) domain.RouteAssignment {
	a := domain.RouteAssignment{
		RouteCode:       route.RouteCode,
		VehicleVIN:      v.VIN,
		VehicleName:     v.VehicleName,
		ServiceType:     serviceType,
		WaveTime:        route.WaveTime,
		DurationMinutes: route.DurationMinutes,
		PackageCount:    route.PackageCount,
	}
	if hasDriver {
		a.DriverName = driver.DriverName
		a.DriverID = driver.TransporterID
		a.DSP = driver.DSP
	}
	return a
}

func (e *AssignmentEngine) commit(route domain.RouteRequest, a domain.RouteAssignment) {
	e.assignments[route.RouteCode] = a
	e.vanLoads[a.VehicleVIN] += route.PackageCount
	metrics.RoutesAssigned.Inc()
}

// Override force-binds a still-available fleet vehicle to a route regardless
// of service-type match. It bypasses the fallback chain and the electric
// check (an explicit human decision) but still removes the vehicle from the
// pool, so the no-double-use invariant holds. An existing assignment for the
// route is replaced and its vehicle returned to the pool.
func (e *AssignmentEngine) Override(ctx context.Context, routeCode, vin string) (domain.RouteAssignment, error) {
	if e.routes == nil {
		return domain.RouteAssignment{}, ErrNoBatch
	}

	route, ok := e.findRoute(routeCode)
	if !ok {
		return domain.RouteAssignment{}, fmt.Errorf("override route %s: %w", routeCode, ErrUnknownRoute)
	}

	v, ok := e.pool.TakeByVIN(vin)
	if !ok {
		return domain.RouteAssignment{}, fmt.Errorf("override route %s: vin %s: %w", routeCode, vin, ErrVehicleUnavailable)
	}

	if prev, ok := e.assignments[routeCode]; ok {
		e.pool.PutBack(domain.Vehicle{
			VIN:         prev.VehicleVIN,
			ServiceType: prev.ServiceType,
			VehicleName: prev.VehicleName,
		})
		e.vanLoads[prev.VehicleVIN] -= route.PackageCount
	}
	e.removeFailed(routeCode)

	driver, hasDriver := e.driverLookup[routeCode]
	a := e.buildAssignment(route, v, v.ServiceType, driver, hasDriver)
	e.commit(route, a)
	if hasDriver && driver.DriverName != "" {
		e.reinforceAffinity(ctx, driver.DriverName, v.VehicleName, v.ServiceType, routeCode)
	}
	metrics.OverridesApplied.Inc()

	e.log.Info().
		Str("batch_id", e.batchID).
		Str("route_code", routeCode).
		Str("vin", vin).
		Str("vehicle_service_type", v.ServiceType).
		Str("route_service_type", route.ServiceType).
		Msg("manual override applied")

	return a, nil
}

// Release rolls back an assignment, returning its vehicle to the pool and
// marking the route failed again.
func (e *AssignmentEngine) Release(routeCode string) error {
	a, ok := e.assignments[routeCode]
	if !ok {
		return fmt.Errorf("release route %s: %w", routeCode, ErrRouteNotAssigned)
	}

	delete(e.assignments, routeCode)
	e.pool.PutBack(domain.Vehicle{
		VIN:         a.VehicleVIN,
		ServiceType: a.ServiceType,
		VehicleName: a.VehicleName,
	})
	e.vanLoads[a.VehicleVIN] -= a.PackageCount
	e.failed = append(e.failed, domain.FailedRoute{RouteCode: routeCode, Reason: "released by operator"})
	return nil
}

// Assignments returns the current assignment map.
func (e *AssignmentEngine) Assignments() map[string]domain.RouteAssignment {
	return e.assignments
}

// FailedRoutes returns the routes that could not be assigned.
func (e *AssignmentEngine) FailedRoutes() []domain.FailedRoute {
	return e.failed
}

// VanLoad returns the bag count committed to a vehicle so far this batch.
func (e *AssignmentEngine) VanLoad(vin string) int {
	return e.vanLoads[vin]
}

func (e *AssignmentEngine) findRoute(routeCode string) (domain.RouteRequest, bool) {
	for _, r := range e.routes {
		if r.RouteCode == routeCode {
			return r, true
		}
	}
	return domain.RouteRequest{}, false
}

func (e *AssignmentEngine) removeFailed(routeCode string) {
	for i, f := range e.failed {
		if f.RouteCode == routeCode {
			e.failed = append(e.failed[:i], e.failed[i+1:]...)
			return
		}
	}
}

// Rendered violation plus its human-readable message.
type ViolationReport struct {
	domain.Violation
	Message string
}

// Aggregated outcome of one assignment run.
type AssignmentStatus struct {
	BatchID              string
	TotalRoutes          int
	Assigned             int
	Failed               int
	FallbackUsed         int
	SuccessRate          float64
	FailedRoutes         []domain.FailedRoute
	Fallbacks            []domain.FallbackUse
	PendingViolations    []ViolationReport
	AuthorizedViolations []ViolationReport
}

// AssignmentStatus aggregates totals, success rate, and the failure,
// fallback-usage, and violation lists. Violations are partitioned by whether
// their route has since been authorized.
func (e *AssignmentEngine) AssignmentStatus() AssignmentStatus {
	total := len(e.assignments) + len(e.failed)

	s := AssignmentStatus{
		BatchID:      e.batchID,
		TotalRoutes:  total,
		Assigned:     len(e.assignments),
		Failed:       len(e.failed),
		FallbackUsed: len(e.fallbacks),
		FailedRoutes: e.failed,
		Fallbacks:    e.fallbacks,
	}
	if total > 0 {
		pct := float64(len(e.assignments)) / float64(total) * 100
		s.SuccessRate = math.Round(pct*10) / 10
	}

	for _, v := range e.violations {
		report := ViolationReport{Violation: v, Message: v.Message()}
		if e.IsAuthorized(v.RouteCode) {
			s.AuthorizedViolations = append(s.AuthorizedViolations, report)
		} else {
			s.PendingViolations = append(s.PendingViolations, report)
		}
	}

	return s
}

// Committed load for one service type actually used this batch. MaxBags is
// the aggregate ceiling across the vehicles assigned under that type; zero
// when the type has no capacity profile (no limit enforced).
type ServiceTypeUsage struct {
	ServiceType      string
	VehiclesAssigned int
	CommittedBags    int
	MaxBags          int
	UtilizationPct   float64
	Alert            bool
}

// Per-vehicle load exceeding its profile ceiling.
type LoadAlert struct {
	VIN         string
	VehicleName string
	ServiceType string
	Bags        int
	MaxBags     int
}

// CapacityStatus aggregates committed bag counts per service type actually
// used and flags any type at or above the alert utilization. Purely
// advisory: it never blocks an assignment, and service types without a
// capacity profile are reported without limits or alerts.
func (e *AssignmentEngine) CapacityStatus() []ServiceTypeUsage {
	type acc struct {
		vehicles map[string]struct{}
		bags     int
	}
	byType := make(map[string]*acc)
	for _, a := range e.assignments {
		u := byType[a.ServiceType]
		if u == nil {
			u = &acc{vehicles: make(map[string]struct{})}
			byType[a.ServiceType] = u
		}
		u.vehicles[a.VehicleVIN] = struct{}{}
		u.bags += a.PackageCount
	}

	out := make([]ServiceTypeUsage, 0, len(byType))
	for serviceType, u := range byType {
		usage := ServiceTypeUsage{
			ServiceType:      serviceType,
			VehiclesAssigned: len(u.vehicles),
			CommittedBags:    u.bags,
		}
		if p, ok := e.capacities.CapacityFor(serviceType); ok && p.MaxBags > 0 {
			usage.MaxBags = p.MaxBags * len(u.vehicles)
			usage.UtilizationPct = float64(u.bags) / float64(usage.MaxBags) * 100
			usage.Alert = usage.UtilizationPct >= domain.CapacityAlertPct
		}
		out = append(out, usage)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ServiceType < out[j].ServiceType })
	return out
}

// CheckLoads reports vehicles whose committed bags exceed their profile
// ceiling. Violations of the load invariant are reported, never silently
// dropped, but only when this check is explicitly requested.
func (e *AssignmentEngine) CheckLoads() []LoadAlert {
	byVIN := make(map[string]domain.RouteAssignment)
	for _, a := range e.assignments {
		byVIN[a.VehicleVIN] = a
	}

	var alerts []LoadAlert
	for vin, bags := range e.vanLoads {
		a, ok := byVIN[vin]
		if !ok {
			continue
		}
		p, ok := e.capacities.CapacityFor(a.ServiceType)
		if !ok || p.MaxBags <= 0 {
			continue
		}
		if bags > p.MaxBags {
			alerts = append(alerts, LoadAlert{
				VIN:         vin,
				VehicleName: a.VehicleName,
				ServiceType: a.ServiceType,
				Bags:        bags,
				MaxBags:     p.MaxBags,
			})
		}
	}

	sort.Slice(alerts, func(i, j int) bool { return alerts[i].VIN < alerts[j].VIN })
	return alerts
}
