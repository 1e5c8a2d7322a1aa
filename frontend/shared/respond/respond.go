// Package respond writes JSON API responses and maps store errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"stocksence/infrastructure/currency"
	"stocksence/infrastructure/logger"
	"stocksence/store"
	"stocksence/validation"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 10<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &validation.Error{Messages: []string{"invalid request body"}}
	}
	return nil
}

// Error writes err with the status its kind maps to.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	body := ErrorBody{Error: err.Error()}
	var verr *validation.Error
	if errors.As(err, &verr) {
		body.Error = "validation failed"
		body.Messages = verr.Messages
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		body = ErrorBody{Error: "internal error"}
	}
	JSON(w, status, body)
}

// Status maps a store error to an HTTP status code.
func Status(err error) int {
	var verr *validation.Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotAuthenticated),
		errors.Is(err, store.ErrSessionExpired),
		errors.Is(err, store.ErrInvalidCredentials),
		errors.Is(err, store.ErrInvalidCompanyID):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrAccountLocked),
		errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateUsername),
		errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrDuplicateSerial),
		errors.Is(err, store.ErrSerialInUse),
		errors.Is(err, store.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidSerial),
		errors.Is(err, store.ErrIntegrity),
		errors.Is(err, currency.ErrUnknownCurrency):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrFeatureUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
