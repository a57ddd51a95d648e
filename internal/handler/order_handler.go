package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles checkout and order management HTTP requests.
type OrderHandler struct {
	checkout  service.CheckoutService
	lifecycle service.LifecycleService
	query     service.OrderQueryService
	logger    zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(
	checkout service.CheckoutService,
	lifecycle service.LifecycleService,
	query service.OrderQueryService,
	logger zerolog.Logger,
) *OrderHandler {
	return &OrderHandler{
		checkout:  checkout,
		lifecycle: lifecycle,
		query:     query,
		logger:    logger.With().Str("handler", "order").Logger(),
	}
}

// Checkout handles POST /orders/checkout requests.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, err, h.logger)
		return
	}

	order, err := h.checkout.Checkout(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.OrderResponse{Order: order})
}

// List handles GET /orders requests, optionally filtered by ?status=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter model.OrderFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseOrderStatus(raw)
		if err != nil {
			writeServiceError(w, r, err, h.logger)
			return
		}
		filter.Status = &status
	}

	orders, err := h.query.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.OrderListResponse{Orders: orders})
}

// GetByID handles GET /orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.query.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.OrderResponse{Order: order})
}

// Cancel handles PATCH /orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	result, err := h.lifecycle.Cancel(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// UpdateStatus handles PATCH /orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, err, h.logger)
		return
	}

	order, err := h.lifecycle.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.OrderResponse{Order: order})
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid order ID format",
			Type:    model.ErrCodeInvalidID,
			Message: err.Error(),
		}, h.logger)
		return uuid.Nil, false
	}
	return id, true
}
