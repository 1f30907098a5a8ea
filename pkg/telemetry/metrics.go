package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/vango-history/pkg/history"
)

// MetricsConfig configures the Prometheus history observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vango_history").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus history observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vango_history",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// MetricsObserver records history operations as Prometheus metrics.
// It is safe to share between stores.
//
// Metrics collected:
//   - <ns>_operations_total: Counter of operations by op and result (changed, noop)
//   - <ns>_evictions_total: Counter of values evicted to stay within capacity
//   - <ns>_timeline_length: Histogram of timeline length after each changed write
type MetricsObserver struct {
	operations *prometheus.CounterVec
	evictions  prometheus.Counter
	length     prometheus.Histogram
}

// Metrics creates a MetricsObserver and registers its collectors.
// It panics if the collectors are already registered with the registry,
// like promauto.
func Metrics(opts ...MetricsOption) *MetricsObserver {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &MetricsObserver{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operations_total",
			Help:        "Total number of history operations by result",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "result"}),

		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "evictions_total",
			Help:        "Total number of values evicted from full timelines",
			ConstLabels: config.ConstLabels,
		}),

		length: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "timeline_length",
			Help:        "Timeline length after each changed write",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128
		}),
	}
}

// Observe implements history.Observer.
func (m *MetricsObserver) Observe(e history.Event) {
	result := "noop"
	if e.Changed {
		result = "changed"
	}
	m.operations.WithLabelValues(e.Op.String(), result).Inc()

	if e.Evicted > 0 {
		m.evictions.Add(float64(e.Evicted))
	}
	if e.Changed && (e.Op == history.OpSet || e.Op == history.OpUpdate) {
		m.length.Observe(float64(e.Len))
	}
}
