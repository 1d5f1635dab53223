package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"dxsim/ports"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.RunObserver = (*PrometheusObserver)(nil)

func TestPrometheusObserver_Counts(t *testing.T) {
	o := NewPrometheusObserver()

	o.RunCompleted("flu", 1000, 3*time.Millisecond)
	o.RunCompleted("flu", 500, time.Millisecond)
	o.RunCompleted("asthma", 200, time.Millisecond)
	o.RunFailed("NOT_FOUND")
	o.SweepCompleted(50, 2, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(o.runsTotal.WithLabelValues("flu")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.runsTotal.WithLabelValues("asthma")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.runFailures.WithLabelValues("NOT_FOUND")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.sweepsTotal))
	assert.Equal(t, 50.0, testutil.ToFloat64(o.sweepReplicates))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.sweepDegenerate))
}

func TestPrometheusObserver_IndependentRegistries(t *testing.T) {
	a := NewPrometheusObserver()
	b := NewPrometheusObserver()
	a.RunFailed("VALIDATION_ERROR")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.runFailures.WithLabelValues("VALIDATION_ERROR")))
}

func TestPrometheusObserver_Handler(t *testing.T) {
	o := NewPrometheusObserver()
	o.RunCompleted("flu", 100, time.Millisecond)

	rec := httptest.NewRecorder()
	o.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `dxsim_runs_total{condition="flu"} 1`)
	assert.Contains(t, string(body), "dxsim_run_duration_seconds_bucket")
}
