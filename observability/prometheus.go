package observability

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusFactory is a MetricFactory backed by a prometheus Registerer.
// Dotted names are exported with underscores.
type PrometheusFactory struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	histograms map[string]prometheus.Histogram
}

// NewPrometheusFactory creates a factory that registers its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusFactory(reg prometheus.Registerer) *PrometheusFactory {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusFactory{
		reg:        reg,
		counters:   make(map[string]prometheus.Counter),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// Counter implements MetricFactory. Asking twice for a name returns the
// same collector.
func (f *PrometheusFactory) Counter(name string) Counter {
	f.mu.Lock()
	defer f.mu.Unlock()

	name = metricName(name)
	if c, ok := f.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: name + "_total",
		Help: "Count of " + strings.ReplaceAll(name, "_", " ") + ".",
	})
	f.counters[name] = registerOrExisting(f.reg, c)
	return f.counters[name]
}

// Histogram implements MetricFactory.
func (f *PrometheusFactory) Histogram(name string) Histogram {
	f.mu.Lock()
	defer f.mu.Unlock()

	name = metricName(name)
	if h, ok := f.histograms[name]; ok {
		return h
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    "Distribution of " + strings.ReplaceAll(name, "_", " ") + ".",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
	f.histograms[name] = registerOrExisting(f.reg, h)
	return f.histograms[name]
}

func registerOrExisting[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	err := reg.Register(c)
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}
	return c
}

func metricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}
