// Package metrics exposes Prometheus counters for the planner.  A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	validations *prometheus.CounterVec
	violations  *prometheus.CounterVec
	tracking    *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// New registers the planner metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "validations_total",
			Help:      "Seat assignment and swap validations by outcome.",
		}, []string{"operation", "result"}),
		violations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "violations_detected_total",
			Help:      "Proximity rule violations reported by detection runs.",
		}, []string{"type"}),
		tracking: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "tracking_records_total",
			Help:      "Adjacency tracking records written or flagged for review.",
		}, []string{"kind"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "code"}),
	}
}

// Validation counts one validation of operation ("assign", "swap",
// "mode").
func (m *Metrics) Validation(operation string, allowed bool) {
	if m == nil {
		return
	}
	result := "refused"
	if allowed {
		result = "allowed"
	}
	m.validations.WithLabelValues(operation, result).Inc()
}

// Violations adds the counts of one detection run.
func (m *Metrics) Violations(sitTogether, sitAway int) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues("sit-together").Add(float64(sitTogether))
	m.violations.WithLabelValues("sit-away").Add(float64(sitAway))
}

// Tracking adds recorded and flagged record counts.
func (m *Metrics) Tracking(recorded, flagged int) {
	if m == nil {
		return
	}
	m.tracking.WithLabelValues("recorded").Add(float64(recorded))
	m.tracking.WithLabelValues("flagged").Add(float64(flagged))
}

// Middleware counts requests by route pattern so ids in paths do not
// explode label cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if m == nil {
				return err
			}
			code := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				code = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(code)).Inc()
			return err
		}
	}
}
