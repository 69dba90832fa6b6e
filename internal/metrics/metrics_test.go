package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.EstimateStarted()
	r.EstimateStarted()
	r.EstimateCompleted(1_466_400)
	r.Rejected("estimate", "invalid_input")
	r.ConfigWritten("admin")
	r.ConfigWritten("import")
	r.ConfigWritten("import")
	r.CorruptConfigRead()
	r.AdminDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.started))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.completed))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejections.WithLabelValues("estimate", "invalid_input")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.configWrites.WithLabelValues("import")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.corruptReads))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.adminDropped))

	n, err := testutil.GatherAndCount(reg, "buildcalc_estimate_total_rub")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordersAreIndependentPerRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusRecorder(prometheus.NewRegistry())
		NewPrometheusRecorder(prometheus.NewRegistry())
	})
}
