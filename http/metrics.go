/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the HTTP request metrics.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the request counter and latency histogram.
func NewMetrics() *Metrics {
	const (
		namespace = "recordstore"
		subsystem = "http"
	)
	labels := []string{"handler", "method", "path", "status", "response_code"}

	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Count of the HTTP requests served",
		}, labels),

		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Histogram of times spent serving HTTP requests",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 5, 7),
		}, labels),
	}
}

// PrometheusCollectors returns the collectors to register.
func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{m.Requests, m.Duration}
}

// Middleware records every request under the handler name. The path label is
// the matched chi route pattern, so path parameters do not explode the label
// space.
func (m *Metrics) Middleware(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			statusW := newStatusResponseWriter(w)

			defer func(start time.Time) {
				path := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if pattern := routePattern(rctx); pattern != "" {
						path = pattern
					}
				}
				label := prometheus.Labels{
					"handler":       name,
					"method":        r.Method,
					"path":          path,
					"status":        statusW.statusCodeClass(),
					"response_code": strconv.Itoa(statusW.Code()),
				}
				m.Duration.With(label).Observe(time.Since(start).Seconds())
				m.Requests.With(label).Inc()
			}(time.Now())

			next.ServeHTTP(statusW, r)
		}
		return http.HandlerFunc(fn)
	}
}

func routePattern(rctx *chi.Context) string {
	pattern := strings.Join(rctx.RoutePatterns, "")
	for strings.Contains(pattern, "/*/") {
		pattern = strings.Replace(pattern, "/*/", "/", -1)
	}
	return pattern
}
