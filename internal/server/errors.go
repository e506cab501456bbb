package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	crmdomain "github.com/jperram92/JamesCRM-sub003/internal/crm/domain"
	deliverydomain "github.com/jperram92/JamesCRM-sub003/internal/delivery/domain"
	"github.com/jperram92/JamesCRM-sub003/internal/document/render"
	"github.com/jperram92/JamesCRM-sub003/internal/document/store"
	quotedomain "github.com/jperram92/JamesCRM-sub003/internal/quote/domain"
)

// ValidationError is a request-level error with a field pointer, rendered as
// a 400 with a machine-readable code.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Code }

func invalidRequestError() error {
	return &ValidationError{Code: "invalid_request", Message: "invalid request payload"}
}

func newValidationError(field, code, message string) error {
	return &ValidationError{Field: field, Code: code, Message: message}
}

var (
	ErrRateLimited      = errors.New("rate_limited")
	ErrDocumentNotFound = errors.New("document_not_found")
)

// AbortWithError maps domain errors onto HTTP statuses and writes the
// uniform error envelope.
func AbortWithError(c *gin.Context, err error) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validation})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, quotedomain.ErrQuoteNotFound),
		errors.Is(err, crmdomain.ErrCompanyNotFound),
		errors.Is(err, crmdomain.ErrContactNotFound),
		errors.Is(err, crmdomain.ErrDealNotFound),
		errors.Is(err, ErrDocumentNotFound):
		status = http.StatusNotFound
		code = err.Error()
	case errors.Is(err, quotedomain.ErrInvalidQuoteID),
		errors.Is(err, quotedomain.ErrInvalidLineItem),
		errors.Is(err, quotedomain.ErrMissingDeal),
		errors.Is(err, quotedomain.ErrMissingReason),
		errors.Is(err, quotedomain.ErrInvalidRecipient),
		errors.Is(err, deliverydomain.ErrMissingRecipient),
		errors.Is(err, deliverydomain.ErrMissingSender):
		status = http.StatusBadRequest
		code = unwrappedCode(err)
	case errors.Is(err, quotedomain.ErrInvalidTransition):
		status = http.StatusConflict
		code = quotedomain.ErrInvalidTransition.Error()
	case errors.Is(err, quotedomain.ErrDeliveryFailed):
		status = http.StatusBadGateway
		code = quotedomain.ErrDeliveryFailed.Error()
	case errors.Is(err, ErrRateLimited):
		status = http.StatusTooManyRequests
		code = ErrRateLimited.Error()
	case errors.Is(err, render.ErrUnknownTemplate),
		errors.Is(err, render.ErrMissingField),
		errors.Is(err, store.ErrStorage),
		errors.Is(err, store.ErrInvalidPath):
		code = unwrappedCode(err)
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		// internals stay out of response bodies
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

func unwrappedCode(err error) string {
	for unwrapped := err; unwrapped != nil; unwrapped = errors.Unwrap(unwrapped) {
		err = unwrapped
	}
	return err.Error()
}
