package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lunetoptics/lunet-backend/internal/discount"
)

// DiscountHandler serves storefront discount validation. Validation is
// side-effect free; customers may call it on every cart edit.
type DiscountHandler struct {
	svc      discount.Service
	validate *validator.Validate
}

func NewDiscountHandler(svc discount.Service) *DiscountHandler {
	return &DiscountHandler{svc: svc, validate: validator.New()}
}

type validateDiscountRequest struct {
	Code     string  `json:"code" validate:"required"`
	Subtotal float64 `json:"subtotal" validate:"gte=0"`
}

type validateDiscountResponse struct {
	Valid          bool    `json:"valid"`
	DiscountAmount float64 `json:"discountAmount,omitempty"`
	Message        string  `json:"message,omitempty"`
}

func (h *DiscountHandler) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			respondWithError(w, http.StatusBadRequest, formatValidationErrors(verrs))
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	res, err := h.svc.Validate(r.Context(), req.Code, decimal.NewFromFloat(req.Subtotal))
	if err != nil {
		log.Error().Err(err).Str("code", req.Code).Msg("handler: failed to validate discount")
		respondWithError(w, http.StatusInternalServerError, "failed to validate discount code")
		return
	}

	resp := validateDiscountResponse{Valid: res.Valid, Message: res.Message}
	if res.Valid {
		resp.DiscountAmount = res.DiscountAmount.InexactFloat64()
	}
	respondWithJSON(w, http.StatusOK, resp)
}
