// Package metrics holds the Prometheus collectors shared by the photo client
// and the list controller. All collectors register with the default
// registerer through promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the Prometheus registerer used by this module.
var Registry = prometheus.DefaultRegisterer

// Request metrics (pkg/client).
var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_requests_total",
		Help: "Total photo API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_request_duration_seconds",
		Help:    "Photo API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_errors_total",
		Help: "Total photo API errors by class",
	}, []string{"class"})

	RateLimitWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gallery_ratelimit_wait_seconds",
		Help:    "Time spent waiting for the client-side request limiter",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1},
	})
)

// Controller metrics (pkg/pagination).
var (
	PagesLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_pages_loaded_total",
		Help: "Page loads by result (page, empty, error)",
	}, []string{"result"})

	DuplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_duplicates_skipped_total",
		Help: "Photos dropped from a page because their id was already loaded",
	})
)

// Handler returns the HTTP handler that exposes all registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Example Prometheus queries:
//
//	# Error rate by class
//	sum by (class) (rate(gallery_errors_total[5m]))
//
//	# P95 list latency
//	histogram_quantile(0.95, rate(gallery_request_duration_seconds_bucket{endpoint="/photos"}[5m]))
//
//	# Share of page loads that failed
//	rate(gallery_pages_loaded_total{result="error"}[5m]) / rate(gallery_pages_loaded_total[5m])
