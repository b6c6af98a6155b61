package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tapi_http_requests_total",
		Help: "Total number of HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tapi_http_request_duration_seconds",
		Help:    "HTTP request duration by endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// Metrics counts requests and observes their duration. Only paths from
// the given set become label values; anything else is folded into a
// fixed "unmatched" label, so clients probing random paths cannot grow
// the registry.
func Metrics(endpoints []string) Middleware {
	known := make(map[string]struct{}, len(endpoints))
	for _, ep := range endpoints {
		known[ep] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpoint := "unmatched"
			if _, ok := known[r.URL.Path]; ok {
				endpoint = r.URL.Path
			}

			ww := &statsWriter{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			defer func() {
				requestsTotal.WithLabelValues(endpoint, r.Method,
					strconv.Itoa(ww.status)).Inc()
				requestDuration.WithLabelValues(endpoint).
					Observe(time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
