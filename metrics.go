package hxmount

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hxmount").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for resolution duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
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

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegisterer sets the Prometheus registerer.
func WithRegisterer(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "hxmount",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors shared by registries and renderers.
// A nil *Metrics records nothing.
//
// Collected:
//   - hxmount_resolutions_total: component resolutions by component and status
//   - hxmount_resolution_duration_seconds: resolver latency by component
//   - hxmount_mounts_total: placeholder mount attempts by status
//   - hxmount_unmounts_total: root elements torn down
//   - hxmount_mounted_roots: root elements currently mounted
type Metrics struct {
	resolutionsTotal   *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	mountsTotal        *prometheus.CounterVec
	unmountsTotal      prometheus.Counter
	mountedRoots       prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		resolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolutions_total",
			Help:        "Total number of component resolutions",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "status"}),

		resolutionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolution_duration_seconds",
			Help:        "Component resolver latency in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		mountsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounts_total",
			Help:        "Total number of placeholder mount attempts",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		unmountsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "unmounts_total",
			Help:        "Total number of root elements unmounted",
			ConstLabels: config.ConstLabels,
		}),

		mountedRoots: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounted_roots",
			Help:        "Number of root elements currently mounted",
			ConstLabels: config.ConstLabels,
		}),
	}
}

const (
	statusOK       = "ok"
	statusNotFound = "not_found"
	statusError    = "error"
)

func (m *Metrics) observeResolution(component, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(component, status).Inc()
	if status != statusNotFound {
		m.resolutionDuration.WithLabelValues(component).Observe(d.Seconds())
	}
}

func (m *Metrics) observeMount(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.mountsTotal.WithLabelValues(statusError).Inc()
		return
	}
	m.mountsTotal.WithLabelValues(statusOK).Inc()
	m.mountedRoots.Inc()
}

func (m *Metrics) observeUnmount() {
	if m == nil {
		return
	}
	m.unmountsTotal.Inc()
	m.mountedRoots.Dec()
}
