package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/lunetoptics/lunet-backend/internal/checkout"
	"github.com/lunetoptics/lunet-backend/internal/discount"
	"github.com/lunetoptics/lunet-backend/internal/order"
	"github.com/lunetoptics/lunet-backend/internal/product"
)

// decodeJSON decodes a request body strictly: unknown fields are an error,
// so typos in client payloads surface as 400s instead of silent drops.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrBadSignature):
		return http.StatusBadRequest
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, discount.ErrCodeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage strips internal wrapping so callers only see the short
// human-readable part. Unexpected errors collapse to a generic message.
func clientMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, order.ErrValidation):
		return err.Error()
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, discount.ErrCodeNotFound):
		return err.Error()
	default:
		return fallback
	}
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "email":
			return fmt.Sprintf("%s must be a valid email", fe.Field())
		case "gt", "gte", "min":
			return fmt.Sprintf("%s is out of range", fe.Field())
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return "invalid request payload"
}
