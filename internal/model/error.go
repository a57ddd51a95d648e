package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Type          string `json:"type"`
	Message       string `json:"message,omitempty"`
	Details       any    `json:"details,omitempty"`
	Retryable     bool   `json:"retryable,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON           = "INVALID_JSON"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeInvalidID             = "INVALID_ID"
	ErrCodeProductNotFound       = "PRODUCT_NOT_FOUND"
	ErrCodeVariantNotFound       = "VARIANT_NOT_FOUND"
	ErrCodeInsufficientStock     = "INSUFFICIENT_STOCK"
	ErrCodeOrderNotFound         = "ORDER_NOT_FOUND"
	ErrCodeAlreadyCancelled      = "ALREADY_CANCELLED"
	ErrCodeCannotCancelDelivered = "CANNOT_CANCEL_DELIVERED"
	ErrCodeInvalidTransition     = "INVALID_TRANSITION"
	ErrCodeInvalidStatus         = "INVALID_STATUS"
	ErrCodeStorage               = "STORAGE_ERROR"
	ErrCodeUnauthorised          = "UNAUTHORIZED"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrValidation            = NewDomainError(ErrCodeValidation, "invalid checkout request")
	ErrProductNotFound       = NewDomainError(ErrCodeProductNotFound, "product not found")
	ErrVariantNotFound       = NewDomainError(ErrCodeVariantNotFound, "product variant not found")
	ErrInsufficientStock     = NewDomainError(ErrCodeInsufficientStock, "insufficient stock")
	ErrOrderNotFound         = NewDomainError(ErrCodeOrderNotFound, "order not found")
	ErrAlreadyCancelled      = NewDomainError(ErrCodeAlreadyCancelled, "order is already cancelled")
	ErrCannotCancelDelivered = NewDomainError(ErrCodeCannotCancelDelivered, "cannot cancel a delivered order")
	ErrInvalidTransition     = NewDomainError(ErrCodeInvalidTransition, "invalid status transition")
	ErrInvalidStatus         = NewDomainError(ErrCodeInvalidStatus, "invalid order status")
	ErrStorage               = NewDomainError(ErrCodeStorage, "storage failure")
)

// IsDomainError reports whether err carries a business rule rejection rather
// than an infrastructure failure.
func IsDomainError(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code != ErrCodeStorage
	}
	var (
		ve  *ValidationError
		vnf *VariantNotFoundError
		ise *InsufficientStockError
		te  *TransitionError
	)
	return errors.As(err, &ve) || errors.As(err, &vnf) || errors.As(err, &ise) || errors.As(err, &te)
}

// ValidationError reports a malformed checkout request.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// VariantNotFoundError names the cart line whose variant does not exist.
type VariantNotFoundError struct {
	Line      int       `json:"line"`
	VariantID uuid.UUID `json:"variantId"`
}

func (e *VariantNotFoundError) Error() string {
	return fmt.Sprintf("line %d: product variant %s not found", e.Line, e.VariantID)
}

func (e *VariantNotFoundError) Is(target error) bool { return target == ErrVariantNotFound }

// InsufficientStockError carries enough detail for a client to adjust the
// offending line without another round trip.
type InsufficientStockError struct {
	Line        int       `json:"line"`
	VariantID   uuid.UUID `json:"variantId"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Size        string    `json:"size"`
	Color       string    `json:"color"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s/%s): requested %d, available %d",
		e.ProductName, e.Size, e.Color, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// TransitionError reports a status change the state machine refuses.
type TransitionError struct {
	From   OrderStatus `json:"from"`
	To     OrderStatus `json:"to"`
	Reason string      `json:"reason"`
}

func (e *TransitionError) Error() string {
	return e.Reason
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// NewTransitionError creates a TransitionError.
func NewTransitionError(from, to OrderStatus, reason string) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason}
}

// NewInvalidStatusError reports a status value outside the known set.
func NewInvalidStatusError(raw string) *DomainError {
	return NewDomainError(ErrCodeInvalidStatus,
		fmt.Sprintf("invalid order status %q: must be one of PENDING, PAID, PROCESSING, SHIPPED, DELIVERED, CANCELLED", raw))
}

// NewStorageError marks err as a retry-safe infrastructure failure.
func NewStorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
