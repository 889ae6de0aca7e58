package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/optica-pos/internal/pkg/metrics"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metricLoop:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metricLoop
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics_SalesAndStock(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.SaleCommitted(decimal.RequireFromString("180.50"))
	m.SaleCommitted(decimal.RequireFromString("19.50"))
	m.SaleOutcome("rejected")
	m.StockMoved("out", "sale", 3)
	m.TaskProcessed("inventory:low_stock_check", nil)
	m.TaskProcessed("inventory:low_stock_check", errors.New("boom"))

	assert.Equal(t, 2.0, counterValue(t, reg, "optica_pos_sales_total", map[string]string{"outcome": "committed"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "optica_pos_sales_total", map[string]string{"outcome": "rejected"}))
	assert.InDelta(t, 200.0, counterValue(t, reg, "optica_pos_sales_amount_total", nil), 0.001)
	assert.Equal(t, 3.0, counterValue(t, reg, "optica_pos_inventory_movement_units_total", map[string]string{"direction": "out"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "optica_pos_worker_tasks_total", map[string]string{"result": "error"}))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.SaleCommitted(decimal.NewFromInt(1))
		m.SaleOutcome("failed")
		m.StockMoved("in", "manual", 1)
		m.ObserveRequest(http.MethodGet, "/x", 200, time.Millisecond)
		m.TaskProcessed("x", nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveRequest(http.MethodPost, "/api/v1/sales", http.StatusCreated, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `optica_pos_http_requests_total{method="POST",route="/api/v1/sales",status="201"} 1`)
}
