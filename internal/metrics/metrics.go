// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics groups HTTP and order engine collectors.
type Metrics struct {
	Requests          *prometheus.CounterVec
	LatencyMS         *prometheus.HistogramVec
	Checkouts         *prometheus.CounterVec
	Cancellations     *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	UnitsReserved     prometheus.Counter
	UnitsRestored     prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		Cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "cancellations_total",
			Help:      "Cancellation attempts by result.",
		}, []string{"result"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Committed order status changes.",
		}, []string{"from", "to"}),
		UnitsReserved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "units_reserved_total",
			Help:      "Stock units taken by committed checkouts.",
		}),
		UnitsRestored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "units_restored_total",
			Help:      "Stock units returned by committed cancellations.",
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.LatencyMS,
		m.Checkouts,
		m.Cancellations,
		m.StatusTransitions,
		m.UnitsReserved,
		m.UnitsRestored,
	)
	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(handler, method string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(elapsed) / float64(time.Millisecond))
}

// ObserveCheckout records a checkout outcome and, on success, the units taken.
func (m *Metrics) ObserveCheckout(err error, units int) {
	m.Checkouts.WithLabelValues(Result(err)).Inc()
	if err == nil {
		m.UnitsReserved.Add(float64(units))
	}
}

// ObserveCancellation records a cancellation outcome and, on success, the units returned.
func (m *Metrics) ObserveCancellation(err error, units int) {
	m.Cancellations.WithLabelValues(Result(err)).Inc()
	if err == nil {
		m.UnitsRestored.Add(float64(units))
	}
}

// ObserveTransition records a committed status change.
func (m *Metrics) ObserveTransition(from, to model.OrderStatus) {
	m.StatusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// Result maps an operation error to a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, model.ErrValidation):
		return "invalid"
	case errors.Is(err, model.ErrVariantNotFound):
		return "variant_not_found"
	case errors.Is(err, model.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, model.ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, model.ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, model.ErrCannotCancelDelivered):
		return "cannot_cancel_delivered"
	case errors.Is(err, model.ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, model.ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "error"
	}
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
