package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SimCollector exposes simulation-specific Prometheus metrics.
// A nil *SimCollector is valid and records nothing.
type SimCollector struct {
	gatherer prometheus.Gatherer

	TickDuration       prometheus.Histogram
	PathDuration       prometheus.Histogram
	PathFailures       prometheus.Counter
	LiveEntities       prometheus.Gauge
	CommandsRejected   *prometheus.CounterVec
	UnitsTrained       prometheus.Counter
	ResourcesDeposited *prometheus.CounterVec
	ProjectileImpacts  prometheus.Counter
}

// NewSimCollector registers simulation metrics against the provided registerer.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	tick, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Wall-clock duration of one fixed simulation step.",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.0166},
	}), "sim_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	path, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_path_computation_duration_seconds",
		Help:    "Duration of A* searches over the obstacle grid.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	}), "sim_path_computation_duration_seconds")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_path_failures_total",
		Help: "Path requests that returned no route.",
	}), "sim_path_failures_total")
	if err != nil {
		return nil, err
	}

	live, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_live_entities",
		Help: "Entities alive at the end of the last tick.",
	}), "sim_live_entities")
	if err != nil {
		return nil, err
	}

	rejected, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_commands_rejected_total",
		Help: "Commands refused by the world, by error code.",
	}, []string{"command", "code"}), "sim_commands_rejected_total")
	if err != nil {
		return nil, err
	}

	trained, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_units_trained_total",
		Help: "Units spawned from production queues.",
	}), "sim_units_trained_total")
	if err != nil {
		return nil, err
	}

	deposited, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_resources_deposited_total",
		Help: "Resources credited to the ledger by returning gatherers.",
	}, []string{"resource"}), "sim_resources_deposited_total")
	if err != nil {
		return nil, err
	}

	impacts, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_projectile_impacts_total",
		Help: "Projectiles that reached their target.",
	}), "sim_projectile_impacts_total")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:           gatherer,
		TickDuration:       tick,
		PathDuration:       path,
		PathFailures:       failures,
		LiveEntities:       live,
		CommandsRejected:   rejected,
		UnitsTrained:       trained,
		ResourcesDeposited: deposited,
		ProjectileImpacts:  impacts,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SimCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveTick records the duration of one simulation step.
func (c *SimCollector) ObserveTick(d time.Duration) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(d.Seconds())
}

// ObservePath records one A* search and whether it found a route.
func (c *SimCollector) ObservePath(d time.Duration, found bool) {
	if c == nil {
		return
	}
	if c.PathDuration != nil {
		c.PathDuration.Observe(d.Seconds())
	}
	if !found && c.PathFailures != nil {
		c.PathFailures.Inc()
	}
}

// SetLiveEntities updates the live entity gauge.
func (c *SimCollector) SetLiveEntities(n int) {
	if c == nil || c.LiveEntities == nil {
		return
	}
	c.LiveEntities.Set(float64(n))
}

// IncRejected counts a refused command.
func (c *SimCollector) IncRejected(command, code string) {
	if c == nil || c.CommandsRejected == nil {
		return
	}
	c.CommandsRejected.WithLabelValues(command, code).Inc()
}

// IncTrained counts a unit leaving a production queue.
func (c *SimCollector) IncTrained() {
	if c == nil || c.UnitsTrained == nil {
		return
	}
	c.UnitsTrained.Inc()
}

// AddDeposited adds a deposit to the per-resource counter.
func (c *SimCollector) AddDeposited(resource string, amount int) {
	if c == nil || c.ResourcesDeposited == nil || amount <= 0 {
		return
	}
	c.ResourcesDeposited.WithLabelValues(resource).Add(float64(amount))
}

// IncImpacts counts a projectile hit.
func (c *SimCollector) IncImpacts() {
	if c == nil || c.ProjectileImpacts == nil {
		return
	}
	c.ProjectileImpacts.Inc()
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
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
