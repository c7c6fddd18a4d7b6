package main

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serveMetrics are the Prometheus metrics exported by skema serve. They live
// in their own registry so several servers (and tests) can coexist.
type serveMetrics struct {
	reg *prometheus.Registry

	Validations        *prometheus.CounterVec
	ValidationDuration prometheus.Histogram
	SchemaReloads      *prometheus.CounterVec
}

func newServeMetrics() *serveMetrics {
	m := &serveMetrics{
		reg: prometheus.NewRegistry(),
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "skema",
				Name:      "validations_total",
				Help:      "Validation requests by result (valid, invalid)",
			},
			[]string{"result"},
		),
		ValidationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "skema",
				Name:      "validation_duration_seconds",
				Help:      "Time spent decoding and validating a request body",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
		SchemaReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "skema",
				Name:      "schema_reloads_total",
				Help:      "Schema reloads by result (ok, error)",
			},
			[]string{"result"},
		),
	}
	m.reg.MustRegister(m.Validations, m.ValidationDuration, m.SchemaReloads)
	return m
}

func (m *serveMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *serveMetrics) observeReload(err error) {
	if err != nil {
		m.SchemaReloads.WithLabelValues("error").Inc()
		return
	}
	m.SchemaReloads.WithLabelValues("ok").Inc()
}

// instrument records the outcome of the validation endpoint.
func (m *serveMetrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		m.ValidationDuration.Observe(time.Since(start).Seconds())
		result := "invalid"
		if ww.Status() < http.StatusBadRequest {
			result = "valid"
		}
		m.Validations.WithLabelValues(result).Inc()
	})
}
