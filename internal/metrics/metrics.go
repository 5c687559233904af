// Package metrics holds the client-side Prometheus collectors.
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

type Metrics struct {
	Registry *prometheus.Registry

	apiRequests      *prometheus.CounterVec
	apiDuration      *prometheus.HistogramVec
	collectionOps    *prometheus.CounterVec
	notificationsOut *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_api_requests_total",
			Help: "Project Pulse API requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pulse_api_request_duration_seconds",
			Help:    "Project Pulse API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		collectionOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_collection_ops_total",
			Help: "Collection controller operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		notificationsOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_notifications_total",
			Help: "Notifications emitted by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.apiRequests, m.apiDuration, m.collectionOps, m.notificationsOut)
	return m
}

// ObserveAPI records one API call. A nil receiver is a no-op.
func (m *Metrics) ObserveAPI(op string, d time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(op, outcome).Inc()
	m.apiDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) ObserveOp(op, outcome string) {
	if m == nil {
		return
	}
	m.collectionOps.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ObserveNotification(kind string) {
	if m == nil {
		return
	}
	m.notificationsOut.WithLabelValues(kind).Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
