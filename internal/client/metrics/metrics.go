// Package metrics holds the client's prometheus collectors. They live on a
// private registry so tests and multiple sessions never collide with the
// global default one.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var confirmBuckets = []float64{1, 2, 5, 10, 15, 30, 60, 120, 300}

// Metrics is safe to use through a nil pointer; every recorder is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	transactions  *prometheus.CounterVec
	confirmations *prometheus.HistogramVec
	aggregations  *prometheus.CounterVec
	degraded      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.transactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "afterlife",
		Subsystem: "client",
		Name:      "transactions_total",
		Help:      "Writes by action and outcome",
	}, []string{"action", "outcome"})

	m.confirmations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "afterlife",
		Subsystem: "client",
		Name:      "confirmation_seconds",
		Help:      "Time from broadcast to receipt",
		Buckets:   confirmBuckets,
	}, []string{"action"})

	m.aggregations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "afterlife",
		Subsystem: "client",
		Name:      "aggregations_total",
		Help:      "Snapshot aggregations by mode and outcome",
	}, []string{"mode", "outcome"})

	m.degraded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "afterlife",
		Subsystem: "client",
		Name:      "degraded_fields_total",
		Help:      "Snapshot fields filled from a default or the previous snapshot",
	}, []string{"field"})

	m.registry.MustRegister(m.transactions, m.confirmations, m.aggregations, m.degraded)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Transaction(action, outcome string) {
	if m == nil {
		return
	}
	m.transactions.With(prometheus.Labels{"action": action, "outcome": outcome}).Inc()
}

func (m *Metrics) Confirmation(action string, d time.Duration) {
	if m == nil {
		return
	}
	m.confirmations.With(prometheus.Labels{"action": action}).Observe(d.Seconds())
}

func (m *Metrics) Aggregation(mode, outcome string) {
	if m == nil {
		return
	}
	m.aggregations.With(prometheus.Labels{"mode": mode, "outcome": outcome}).Inc()
}

func (m *Metrics) Degraded(field string) {
	if m == nil {
		return
	}
	m.degraded.With(prometheus.Labels{"field": field}).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
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

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
