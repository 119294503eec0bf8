package observability

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mishwar", Name: "rides_requested_total", Help: "Total ride requests accepted by the API"})
	RidesAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mishwar", Name: "rides_accepted_total", Help: "Total rides claimed by a driver"})
	RidesCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mishwar", Name: "rides_completed_total", Help: "Total rides completed"})
	RidesCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mishwar", Name: "rides_cancelled_total", Help: "Total rides cancelled"})
	DispatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mishwar", Name: "dispatch_latency_seconds", Help: "Candidate search latency seconds"})
	DriversAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mishwar", Name: "drivers_available", Help: "Number of drivers currently available"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mishwar", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mishwar",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// MetricsMiddleware records per-request counters and latency histograms.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, status).Inc()
			HTTPRequestDuration.WithLabelValues(c.Request().Method, path, status).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
