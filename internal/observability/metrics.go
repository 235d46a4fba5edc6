package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RoutingCollector bundles Prometheus metrics for the routing engine and
// the live re-planning loop, and provides a ready-to-serve /metrics
// handler.
type RoutingCollector struct {
	gatherer prometheus.Gatherer

	// PlanningCalls counts planning invocations by kind (best, consume,
	// yen) and outcome (found, not_found).
	PlanningCalls *prometheus.CounterVec
	// PlanningDuration tracks wall-clock planning latency per kind.
	PlanningDuration *prometheus.HistogramVec

	LiveCycles     prometheus.Counter
	PlanContacts   prometheus.Gauge
	ActiveContacts prometheus.Gauge
	LastRouteHops  prometheus.Gauge
	LastLatency    prometheus.Gauge
}

// NewRoutingCollector registers routing metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Registration tolerates collectors that already exist, so repeated
// construction in tests is safe.
func NewRoutingCollector(reg prometheus.Registerer) (*RoutingCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cgr_planning_calls_total",
		Help: "Total number of planning calls, labeled by search kind and outcome.",
	}, []string{"kind", "outcome"})
	calls, err := registerCounterVec(reg, calls, "cgr_planning_calls_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cgr_planning_duration_seconds",
		Help:    "Planning call latency in seconds.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"kind"})
	durations, err = registerHistogramVec(reg, durations, "cgr_planning_duration_seconds")
	if err != nil {
		return nil, err
	}

	cycles, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cgr_live_cycles_total",
		Help: "Total number of live re-planning cycles executed.",
	}), "cgr_live_cycles_total")
	if err != nil {
		return nil, err
	}

	planContacts, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cgr_plan_contacts",
		Help: "Number of contacts in the current working plan.",
	}), "cgr_plan_contacts")
	if err != nil {
		return nil, err
	}
	activeContacts, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cgr_active_contacts",
		Help: "Number of contact windows open at the current simulation time.",
	}), "cgr_active_contacts")
	if err != nil {
		return nil, err
	}
	lastHops, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cgr_last_route_hops",
		Help: "Hop count of the most recent best route; 0 when no route was found.",
	}), "cgr_last_route_hops")
	if err != nil {
		return nil, err
	}
	lastLatency, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cgr_last_route_latency_seconds",
		Help: "End-to-end latency of the most recent best route in simulated seconds.",
	}), "cgr_last_route_latency_seconds")
	if err != nil {
		return nil, err
	}

	return &RoutingCollector{
		gatherer:         gatherer,
		PlanningCalls:    calls,
		PlanningDuration: durations,
		LiveCycles:       cycles,
		PlanContacts:     planContacts,
		ActiveContacts:   activeContacts,
		LastRouteHops:    lastHops,
		LastLatency:      lastLatency,
	}, nil
}

// ObservePlanning records one planning call.
func (c *RoutingCollector) ObservePlanning(kind string, found bool, seconds float64) {
	if c == nil {
		return
	}
	outcome := "found"
	if !found {
		outcome = "not_found"
	}
	if c.PlanningCalls != nil {
		c.PlanningCalls.WithLabelValues(kind, outcome).Inc()
	}
	if c.PlanningDuration != nil {
		c.PlanningDuration.WithLabelValues(kind).Observe(seconds)
	}
}

// ObserveCycle records the per-cycle gauges of the live loop.
func (c *RoutingCollector) ObserveCycle(planContacts, activeContacts, hops int, latency float64) {
	if c == nil {
		return
	}
	if c.LiveCycles != nil {
		c.LiveCycles.Inc()
	}
	if c.PlanContacts != nil {
		c.PlanContacts.Set(float64(planContacts))
	}
	if c.ActiveContacts != nil {
		c.ActiveContacts.Set(float64(activeContacts))
	}
	if c.LastRouteHops != nil {
		c.LastRouteHops.Set(float64(hops))
	}
	if c.LastLatency != nil {
		c.LastLatency.Set(latency)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RoutingCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
