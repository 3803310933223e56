package monitor

import (
	"testing"
	"time"

	"github.com/longbridgeapp/assert"
	"github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusCollector(t *testing.T) {
	m := New("timewatch:name=Prom", []string{"dbCall"}, nil)

	m.Update(sealedSlice(map[string][]time.Duration{
		"dbCall": {10 * time.Millisecond, 20 * time.Millisecond},
	}))

	registry := prometheus.NewPedanticRegistry()

	err := registry.Register(NewPrometheusCollector(m))
	assert.NoError(t, err)

	families, err := registry.Gather()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(families))
	assert.Equal(t, "timewatch_statistic", families[0].GetName())

	// one gauge sample per exposed attribute
	assert.Equal(t, 6, len(families[0].GetMetric()))

	found := false

	for _, metric := range families[0].GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "attribute" && label.GetValue() == "dbCallMean" {
				found = true

				assert.Equal(t, 15.0, metric.GetGauge().GetValue())
			}
		}
	}

	assert.True(t, found)
}
