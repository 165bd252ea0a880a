package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordAndReuse(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := New(reg)
	require.NoError(t, err)

	m.RecordCycle()
	m.RecordCycle()
	m.RecordCycleSkipped()
	m.RecordEntityError("occupancy")
	m.RecordForecastRequest()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ingestCycles))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingestSkips))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entityErrors.WithLabelValues("occupancy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.forecastRequests))

	// Registering on the same registry reuses the existing collectors.
	again, err := New(reg)
	require.NoError(t, err)
	again.RecordCycle()
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ingestCycles))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordCycle()
	m.RecordCycleSkipped()
	m.RecordEntityError("charger")
	m.RecordForecastRequest()
}
