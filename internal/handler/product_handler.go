package handler

import (
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /products requests with pagination. With ?ids=a,b it
// returns just those products and their variants, for cart reconciliation.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("ids") {
		h.getByIDs(w, r)
		return
	}

	limit, ok := h.queryInt(w, r, "limit", 10)
	if !ok {
		return
	}
	offset, ok := h.queryInt(w, r, "offset", 0)
	if !ok {
		return
	}

	products, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) getByIDs(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")

	products, err := h.service.GetByIDs(r.Context(), ids)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid " + name + " parameter",
			Type:    model.ErrCodeValidation,
			Message: err.Error(),
		}, h.logger)
		return 0, false
	}
	return v, true
}
