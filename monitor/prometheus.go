package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector bridges a monitor's attribute snapshot to Prometheus:
// every exposed attribute becomes a sample of the timewatch_statistic gauge,
// labeled with the attribute name. Collection reads the snapshot through the
// monitor's read lock, so it is safe while the append path updates.
type PrometheusCollector struct {
	monitor *Monitor
	desc    *prometheus.Desc
}

// NewPrometheusCollector creates a collector for the given monitor.
func NewPrometheusCollector(m *Monitor) *PrometheusCollector {
	return &PrometheusCollector{
		monitor: m,
		desc: prometheus.NewDesc(
			"timewatch_statistic",
			"Current value of an exposed timing statistic attribute.",
			[]string{"monitor", "attribute"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	for attribute, value := range c.monitor.Attributes() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, value, c.monitor.Name(), attribute)
	}
}
