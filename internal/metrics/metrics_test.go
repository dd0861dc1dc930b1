package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FlowCompleted("signup", OutcomeSuccess)
	m.FlowCompleted("signup", OutcomeSuccess)
	m.FlowCompleted("unregister", OutcomeRejected)
	m.RefreshObserved(OutcomeSuccess, 20*time.Millisecond)
	m.SessionsActive(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.flows.WithLabelValues("signup", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flows.WithLabelValues("unregister", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessions))

	count, err := testutil.GatherAndCount(reg, "board_refresh_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
