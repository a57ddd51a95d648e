package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
// Checkout and the catalogue are public; order management needs the API key.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()
	operator := middleware.APIKeyAuth(apiKey, logger)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.Handle("GET /metrics", metrics.Handler(gatherer))

	mux.HandleFunc("GET /products", productHandler.GetAll)
	mux.HandleFunc("GET /products/{id}", productHandler.GetByID)

	mux.HandleFunc("POST /orders/checkout", orderHandler.Checkout)
	mux.Handle("GET /orders", operator(http.HandlerFunc(orderHandler.List)))
	mux.Handle("GET /orders/{id}", operator(http.HandlerFunc(orderHandler.GetByID)))
	mux.Handle("PATCH /orders/{id}/cancel", operator(http.HandlerFunc(orderHandler.Cancel)))
	mux.Handle("PATCH /orders/{id}/status", operator(http.HandlerFunc(orderHandler.UpdateStatus)))

	return middleware.Chain(mux,
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Metrics(m),
		middleware.CORS,
	)
}
