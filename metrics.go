package kiln

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric is the last-recorded value for a metric name. No aggregation or
// windowing is performed; the table only remembers the most recent record.
type Metric struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Tags      map[string]string `json:"tags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// metricsTable is the engine's last-value metrics store.
type metricsTable struct {
	mu      sync.RWMutex
	metrics map[string]Metric
}

func newMetricsTable() *metricsTable {
	return &metricsTable{metrics: make(map[string]Metric)}
}

func (t *metricsTable) record(name string, value float64, tags map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics[name] = Metric{
		Name:      name,
		Value:     value,
		Tags:      tags,
		Timestamp: time.Now(),
	}
}

func (t *metricsTable) snapshot() map[string]Metric {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Metric, len(t.metrics))
	for name, metric := range t.metrics {
		out[name] = metric
	}
	return out
}

// RecordMetric records the last value for a metric name with an optional tag
// set.
func (e *Engine) RecordMetric(name string, value float64, tags map[string]string) {
	e.metrics.record(name, value, tags)
}

// GetMetrics returns a snapshot of the metrics table.
func (e *Engine) GetMetrics() map[string]Metric {
	return e.metrics.snapshot()
}

// Collector exposes the engine's metrics table as a Prometheus collector.
// Each entry becomes a gauge with its tags as labels; the collector reads
// the table on every scrape, so it reflects the latest recorded values.
func (e *Engine) Collector() prometheus.Collector {
	return &metricsCollector{table: e.metrics}
}

type metricsCollector struct {
	table *metricsTable
}

// Describe sends no descriptors: the set of metric names is dynamic, so the
// collector is registered unchecked.
func (c *metricsCollector) Describe(ch chan<- *prometheus.Desc) {}

func (c *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	for _, metric := range c.table.snapshot() {
		keys := make([]string, 0, len(metric.Tags))
		for key := range metric.Tags {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		values := make([]string, len(keys))
		for i, key := range keys {
			values[i] = metric.Tags[key]
		}

		desc := prometheus.NewDesc(promName(metric.Name), "last recorded value", keys, nil)
		constMetric, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, metric.Value, values...)
		if err != nil {
			continue
		}
		ch <- prometheus.NewMetricWithTimestamp(metric.Timestamp, constMetric)
	}
}

// promName rewrites a dotted metric name into the Prometheus charset.
func promName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
