package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("memory", reg)

	m.LiveChannels.Set(2)
	m.BadgesAwarded.WithLabelValues("LIKE").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["memory_live_channels"])
	assert.True(t, names["memory_badges_awarded_total"])
}

func TestObserveDB(t *testing.T) {
	m := NewMetrics("memory", prometheus.NewRegistry())

	m.ObserveDB("badge_award", nil, 0.01)
	m.ObserveDB("badge_award", errors.New("boom"), 0.02)
	m.ObserveDB("badge_award", nil, 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("badge_award", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("badge_award", "error")))
}

func TestNopDoesNotPanicOnReuse(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().LiveMessagesSent.Inc()
		Nop().LiveMessagesSent.Inc()
	})
}
