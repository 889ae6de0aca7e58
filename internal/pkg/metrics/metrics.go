// internal/pkg/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "optica_pos"

// Metrics holds the application's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Requests       *prometheus.CounterVec
	LatencyMS      *prometheus.HistogramVec
	Sales          *prometheus.CounterVec
	SalesAmount    prometheus.Counter
	StockMovements *prometheus.CounterVec
	Tasks          *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Passing nil uses
// the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method", "route"}),
		Sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "total",
			Help:      "Sale attempts by outcome.",
		}, []string{"outcome"}),
		SalesAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "amount_total",
			Help:      "Sum of committed sale totals.",
		}),
		StockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "movement_units_total",
			Help:      "Units moved in or out of stock.",
		}, []string{"direction", "reference"}),
		Tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "tasks_total",
			Help:      "Background tasks processed by type and result.",
		}, []string{"type", "result"}),
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.Sales, m.SalesAmount, m.StockMovements, m.Tasks)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// Handler exposes the registry m was registered with
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(method, route).Observe(float64(elapsed.Milliseconds()))
}

// SaleOutcome counts a sale attempt. Outcomes are committed, replayed,
// rejected, conflict and failed.
func (m *Metrics) SaleOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Sales.WithLabelValues(outcome).Inc()
}

// SaleCommitted counts a committed sale and its total
func (m *Metrics) SaleCommitted(total decimal.Decimal) {
	if m == nil {
		return
	}
	m.Sales.WithLabelValues("committed").Inc()
	m.SalesAmount.Add(total.InexactFloat64())
}

// StockMoved counts units moved in one direction
func (m *Metrics) StockMoved(direction, reference string, units int) {
	if m == nil {
		return
	}
	m.StockMovements.WithLabelValues(direction, reference).Add(float64(units))
}

// TaskProcessed counts a background task result
func (m *Metrics) TaskProcessed(taskType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Tasks.WithLabelValues(taskType, result).Inc()
}
