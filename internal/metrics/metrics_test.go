package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, "success"},
		{model.NewValidationError("items", "at least one item is required"), "invalid"},
		{&model.VariantNotFoundError{Line: 1}, "variant_not_found"},
		{fmt.Errorf("checkout: %w", &model.InsufficientStockError{Requested: 3, Available: 2}), "insufficient_stock"},
		{model.ErrOrderNotFound, "order_not_found"},
		{model.ErrAlreadyCancelled, "already_cancelled"},
		{model.ErrCannotCancelDelivered, "cannot_cancel_delivered"},
		{model.NewInvalidStatusError("BOGUS"), "invalid_status"},
		{model.NewTransitionError(model.OrderStatusDelivered, model.OrderStatusPaid, "terminal"), "invalid_transition"},
		{model.NewStorageError("checkout", errors.New("connection reset")), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Result(tt.err))
		})
	}
}

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCheckout(nil, 3)
	m.ObserveCheckout(&model.InsufficientStockError{}, 5)
	m.ObserveCancellation(nil, 2)
	m.ObserveCancellation(model.ErrAlreadyCancelled, 2)
	m.ObserveTransition(model.OrderStatusPending, model.OrderStatusPaid)
	m.ObserveRequest("POST /orders/checkout", http.MethodPost, http.StatusCreated, 12*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.UnitsReserved))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UnitsRestored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cancellations.WithLabelValues("already_cancelled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusTransitions.WithLabelValues("PENDING", "PAID")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("POST /orders/checkout", "POST", "201")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LatencyMS))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveCheckout(nil, 1)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `storefront_orders_checkouts_total{result="success"} 1`)
}
