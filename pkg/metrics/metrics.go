// Package metrics provides performance tracking and observability for
// spawnpool using Prometheus metrics. It offers collectors for spawn and
// despawn throughput, pool occupancy, retain counts, and lifecycle misuse.
//
// # Basic Usage
//
//	// Record a successful spawn
//	metrics.SpawnsTotal.WithLabelValues("enemy", "success").Inc()
//
//	// Track spawn latency
//	timer := metrics.NewTimer()
//	inst, err := handler.Spawn()
//	metrics.SpawnLatency.WithLabelValues("enemy").Observe(float64(timer.Stop().Nanoseconds()))
//
//	// Track pool occupancy
//	metrics.PoolFreeInstances.WithLabelValues("enemy").Set(float64(pool.Len()))
//
// # Metric Types
//
// Counter: Monotonically increasing values (e.g., total spawns)
// Gauge: Values that can go up or down (e.g., free instances)
// Histogram: Distribution of values (e.g., spawn latency percentiles)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SpawnsTotal tracks the total number of spawn operations.
	// Labels: template (template key), status (success/failure)
	SpawnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spawnpool_spawns_total",
			Help: "Total number of spawn operations",
		},
		[]string{"template", "status"},
	)

	// DespawnsTotal tracks the total number of despawn operations.
	// Labels: template (template key), status (success/failure)
	DespawnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spawnpool_despawns_total",
			Help: "Total number of despawn operations",
		},
		[]string{"template", "status"},
	)

	// SpawnLatency tracks the distribution of spawn latencies in
	// nanoseconds. Buckets are tuned for an operation that is usually a
	// free-list pop but occasionally a full instantiation.
	SpawnLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "spawnpool_spawn_latency_nanoseconds",
			Help: "Spawn latency in nanoseconds",
			Buckets: []float64{
				100,   // 100ns - free-list pop
				1000,  // 1μs - callback-heavy reuse
				10000, // 10μs - light instantiation
				1e5,   // 100μs - instantiation with placement
				1e6,   // 1ms - heavyweight instantiation
				1e7,   // 10ms - pathological
			},
		},
		[]string{"template"},
	)

	// PoolFreeInstances tracks the number of cached inactive instances
	// per template pool.
	PoolFreeInstances = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spawnpool_pool_free_instances",
			Help: "Number of inactive instances cached per template pool",
		},
		[]string{"template"},
	)

	// HandlerRetainCount tracks the retain count per handler.
	HandlerRetainCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spawnpool_handler_retain_count",
			Help: "Current retain count per pool handler",
		},
		[]string{"template"},
	)

	// RegisteredHandlers tracks the number of handlers in the registry.
	RegisteredHandlers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spawnpool_registered_handlers",
			Help: "Number of handlers currently registered with the manager",
		},
	)

	// InvalidOpsTotal counts reported lifecycle violations: double
	// despawns, over-releases, duplicate registrations, spawns from
	// unknown keys.
	// Labels: op (despawn/release/register/spawn_key/spawn_ref)
	InvalidOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spawnpool_invalid_ops_total",
			Help: "Total number of reported invalid lifecycle operations",
		},
		[]string{"op"},
	)

	// InactiveFlushesTotal counts cache flushes, labeled by what
	// triggered them.
	// Labels: reason (manual/memory_pressure)
	InactiveFlushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spawnpool_inactive_flushes_total",
			Help: "Total number of inactive-instance cache flushes",
		},
		[]string{"reason"},
	)
)

// Timer measures the duration of a single operation.
type Timer struct {
	start time.Time
}

// NewTimer starts a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed time since the timer was started.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
