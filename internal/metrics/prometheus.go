// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus exports flow outcomes as tixload_* series.
type Prometheus struct {
	StepsTotal   *prometheus.CounterVec
	StepErrors   *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	FlowDuration prometheus.Histogram
	FlowsTotal   *prometheus.CounterVec
	// ActiveVUs is incremented by the runner while a virtual user is alive.
	ActiveVUs prometheus.Gauge
}

// NewPrometheus registers the collectors on reg. Pass a fresh registry per
// run so repeated runs in one process do not collide.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		StepsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tixload_steps_total",
			Help: "Checkout steps executed",
		}, []string{"step"}),
		StepErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tixload_step_errors_total",
			Help: "Checkout steps that failed their status or extraction check",
		}, []string{"step"}),
		StepDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tixload_step_duration_seconds",
			Help:    "Round trip of each checkout step",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"step"}),
		FlowDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tixload_flow_duration_seconds",
			Help:    "Wall clock of fully successful checkout flows",
			Buckets: []float64{1, 2, 5, 10, 15, 20, 30, 45, 60},
		}),
		FlowsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tixload_flows_total",
			Help: "Checkout flows by result",
		}, []string{"result"}),
		ActiveVUs: f.NewGauge(prometheus.GaugeOpts{
			Name: "tixload_virtual_users",
			Help: "Virtual users currently running",
		}),
	}
}

func (p *Prometheus) Step(name string, ok bool, d time.Duration) {
	p.StepsTotal.WithLabelValues(name).Inc()
	// touch the error series so it exists with 0 for steps that never fail
	errs := p.StepErrors.WithLabelValues(name)
	if !ok {
		errs.Inc()
	}
	p.StepDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (p *Prometheus) Flow(ok bool, d time.Duration) {
	if ok {
		p.FlowsTotal.WithLabelValues("success").Inc()
		p.FlowDuration.Observe(d.Seconds())
		return
	}
	p.FlowsTotal.WithLabelValues("failure").Inc()
}

// Serve exposes g on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
