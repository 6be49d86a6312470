package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NotNil(t, m.ScenariosTotal)
	assert.NotNil(t, m.ScenarioDuration)
	assert.NotNil(t, m.StepFailures)
	assert.NotNil(t, m.SessionsActive)
}

func TestRecordScenario(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordScenario("pass", 120*time.Millisecond)
	m.RecordScenario("pass", 80*time.Millisecond)
	m.RecordScenario("fail", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScenariosTotal.WithLabelValues("pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScenariosTotal.WithLabelValues("fail")))
}

func TestRecordFailureAndSessions(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordFailure("AssertionTimeout")
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepFailures.WithLabelValues("AssertionTimeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordScenario("pass", time.Second)
		m.RecordFailure("x")
		m.SessionOpened()
		m.SessionClosed()
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordScenario("pass", time.Millisecond)

	ts := httptest.NewServer(m.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `formcheck_scenarios_total{outcome="pass"} 1`))
}
