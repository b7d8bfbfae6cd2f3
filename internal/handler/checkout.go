package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lunetoptics/lunet-backend/internal/checkout"
	"github.com/lunetoptics/lunet-backend/internal/order"
	"github.com/lunetoptics/lunet-backend/internal/pricing"
)

// CheckoutHandler serves the two checkout paths and the shipping quote.
type CheckoutHandler struct {
	orders   order.Service
	sessions checkout.Service
	validate *validator.Validate
}

func NewCheckoutHandler(orders order.Service, sessions checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{orders: orders, sessions: sessions, validate: validator.New()}
}

type calculateShippingRequest struct {
	Method string `json:"method"`
}

func (h *CheckoutHandler) CalculateShipping(w http.ResponseWriter, r *http.Request) {
	var req calculateShippingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]float64{
		"cost": pricing.ShippingCost(req.Method).InexactFloat64(),
	})
}

type orderItemPayload struct {
	Name     string  `json:"name" validate:"required"`
	Quantity int     `json:"quantity" validate:"gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
}

type addressPayload struct {
	County string `json:"county" validate:"required"`
	City   string `json:"city" validate:"required"`
	Line   string `json:"line" validate:"required"`
}

type createOrderRambursRequest struct {
	CustomerName   string             `json:"customerName" validate:"required"`
	CustomerEmail  string             `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone  string             `json:"customerPhone" validate:"required"`
	Address        addressPayload     `json:"address"`
	Items          []orderItemPayload `json:"items" validate:"required,min=1,dive"`
	ShippingMethod string             `json:"shippingMethod"`
	DiscountCode   string             `json:"discountCode"`
}

func (h *CheckoutHandler) CreateOrderRamburs(w http.ResponseWriter, r *http.Request) {
	var req createOrderRambursRequest
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

	o, err := h.orders.CreateCashOnDelivery(r.Context(), &order.CashOnDeliveryRequest{
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		County:         req.Address.County,
		City:           req.Address.City,
		Address:        req.Address.Line,
		Items:          toOrderItems(req.Items),
		ShippingMethod: req.ShippingMethod,
		DiscountCode:   req.DiscountCode,
	})
	if err != nil {
		code := mapErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Msg("handler: failed to create ramburs order")
		}
		respondWithError(w, code, clientMessage(err, "failed to create order"))
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"orderId": o.ID,
	})
}

type createCheckoutSessionRequest struct {
	Items          []orderItemPayload `json:"items" validate:"required,min=1,dive"`
	ShippingMethod string             `json:"shippingMethod"`
	DiscountCode   string             `json:"discountCode"`
}

func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutSessionRequest
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

	url, err := h.sessions.CreateSession(r.Context(), &checkout.CartRequest{
		Items:          toOrderItems(req.Items),
		ShippingMethod: req.ShippingMethod,
		DiscountCode:   req.DiscountCode,
	})
	if err != nil {
		code := mapErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Msg("handler: failed to create checkout session")
		}
		respondWithError(w, code, clientMessage(err, "failed to create checkout session"))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}

func toOrderItems(items []orderItemPayload) []order.Item {
	out := make([]order.Item, 0, len(items))
	for _, it := range items {
		out = append(out, order.Item{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: decimal.NewFromFloat(it.Price),
		})
	}
	return out
}
