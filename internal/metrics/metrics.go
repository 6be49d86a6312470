package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for scenario runs. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	ScenariosTotal   *prometheus.CounterVec
	ScenarioDuration prometheus.Histogram
	StepFailures     *prometheus.CounterVec
	SessionsActive   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{gatherer: reg}

	m.ScenariosTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formcheck_scenarios_total",
			Help: "Total number of scenarios run, by outcome",
		},
		[]string{"outcome"},
	)

	m.ScenarioDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "formcheck_scenario_duration_seconds",
			Help:    "Wall time of a scenario from session open to last assertion",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	m.StepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formcheck_step_failures_total",
			Help: "Total number of failed steps, by failure kind",
		},
		[]string{"kind"},
	)

	m.SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "formcheck_sessions_active",
			Help: "Number of browser sessions currently open",
		},
	)

	reg.MustRegister(
		m.ScenariosTotal,
		m.ScenarioDuration,
		m.StepFailures,
		m.SessionsActive,
	)

	return m
}

// RecordScenario counts a finished scenario.
func (m *Metrics) RecordScenario(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScenariosTotal.WithLabelValues(outcome).Inc()
	m.ScenarioDuration.Observe(d.Seconds())
}

// RecordFailure counts a failed step.
func (m *Metrics) RecordFailure(kind string) {
	if m == nil {
		return
	}
	m.StepFailures.WithLabelValues(kind).Inc()
}

// SessionOpened tracks a newly opened browser session.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

// SessionClosed tracks a released browser session.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
