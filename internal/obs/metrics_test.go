package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icu-sec/icu/internal/rules"
)

func TestMetrics_ObserveScan_IncrementsByRiskLevel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveScan(rules.RiskHigh)
	m.ObserveScan(rules.RiskHigh)
	m.ObserveScan(rules.RiskClean)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, fam := range families {
		if fam.GetName() != "icu_scans_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "risk_level" {
					counts[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 2.0, counts[string(rules.RiskHigh)])
	assert.Equal(t, 1.0, counts[string(rules.RiskClean)])
}

func TestMetrics_NilReceiver_NeverPanics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveScan(rules.RiskHigh)
		m.CacheHit()
		m.CacheMiss()
		m.ObserveDuration(0.5)
	})
}

func TestMetrics_CacheHitMiss(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()

	families, err := reg.Gather()
	require.NoError(t, err)

	var hitVal, missVal float64
	for _, fam := range families {
		switch fam.GetName() {
		case "icu_hash_cache_hits_total":
			hitVal = firstCounterValue(fam)
		case "icu_hash_cache_misses_total":
			missVal = firstCounterValue(fam)
		}
	}
	assert.Equal(t, 2.0, hitVal)
	assert.Equal(t, 1.0, missVal)
}

func firstCounterValue(fam *dto.MetricFamily) float64 {
	if len(fam.GetMetric()) == 0 {
		return 0
	}
	return fam.GetMetric()[0].GetCounter().GetValue()
}
