package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to tell the client.
		return
	}
}

// writeError writes a standard error body tagged with the request's correlation ID.
func writeError(w http.ResponseWriter, r *http.Request, status int, resp model.ErrorResponse, logger zerolog.Logger) {
	resp.CorrelationID = middleware.RequestIDFromContext(r.Context())
	if resp.Error == "" {
		resp.Error = http.StatusText(status)
	}

	ev := logger.Warn()
	if status >= http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Str("type", resp.Type).
		Str("message", resp.Message).
		Int("status", status).
		Str("correlation_id", resp.CorrelationID).
		Msg("handler error")

	writeJSON(w, status, resp)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeInvalidJSON(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	writeError(w, r, http.StatusBadRequest, model.ErrorResponse{
		Error:   "invalid request body",
		Type:    model.ErrCodeInvalidJSON,
		Message: err.Error(),
	}, logger)
}

// writeServiceError maps an error returned by a service to its HTTP response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var (
		ve  *model.ValidationError
		vnf *model.VariantNotFoundError
		ise *model.InsufficientStockError
		te  *model.TransitionError
		de  *model.DomainError
	)

	switch {
	case errors.As(err, &ve):
		writeError(w, r, http.StatusBadRequest, model.ErrorResponse{
			Error: "invalid request", Type: model.ErrCodeValidation, Message: ve.Error(), Details: ve,
		}, logger)
	case errors.As(err, &vnf):
		writeError(w, r, http.StatusNotFound, model.ErrorResponse{
			Error: "product variant not found", Type: model.ErrCodeVariantNotFound, Message: vnf.Error(), Details: vnf,
		}, logger)
	case errors.As(err, &ise):
		writeError(w, r, http.StatusConflict, model.ErrorResponse{
			Error: "insufficient stock", Type: model.ErrCodeInsufficientStock, Message: ise.Error(), Details: ise,
		}, logger)
	case errors.As(err, &te):
		writeError(w, r, http.StatusConflict, model.ErrorResponse{
			Error: "invalid status transition", Type: model.ErrCodeInvalidTransition, Message: te.Error(), Details: te,
		}, logger)
	case errors.As(err, &de) && de.Code == model.ErrCodeStorage:
		logger.Error().Err(err).Msg("storage failure")
		writeError(w, r, http.StatusInternalServerError, model.ErrorResponse{
			Error:     "storage failure",
			Type:      model.ErrCodeStorage,
			Message:   "the operation was not applied and can be retried",
			Retryable: true,
		}, logger)
	case errors.As(err, &de):
		writeError(w, r, domainStatus(de.Code), model.ErrorResponse{
			Error: de.Message, Type: de.Code, Message: err.Error(),
		}, logger)
	default:
		logger.Error().Err(err).Msg("unclassified service error")
		writeError(w, r, http.StatusInternalServerError, model.ErrorResponse{
			Error: "internal server error", Type: model.ErrCodeInternalError,
		}, logger)
	}
}

func domainStatus(code string) int {
	switch code {
	case model.ErrCodeValidation, model.ErrCodeInvalidStatus:
		return http.StatusBadRequest
	case model.ErrCodeOrderNotFound, model.ErrCodeProductNotFound, model.ErrCodeVariantNotFound:
		return http.StatusNotFound
	case model.ErrCodeAlreadyCancelled, model.ErrCodeCannotCancelDelivered,
		model.ErrCodeInvalidTransition, model.ErrCodeInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
