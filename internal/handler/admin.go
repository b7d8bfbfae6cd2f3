package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lunetoptics/lunet-backend/internal/discount"
	"github.com/lunetoptics/lunet-backend/internal/export"
	"github.com/lunetoptics/lunet-backend/internal/invoice"
	"github.com/lunetoptics/lunet-backend/internal/order"
	"github.com/lunetoptics/lunet-backend/internal/product"
	"github.com/lunetoptics/lunet-backend/internal/shipping"
)

// AdminHandler is the back office: resource CRUD plus the bulk invoice,
// AWB and export actions. Authorization happens in middleware before any
// of these run.
type AdminHandler struct {
	products  product.Service
	orders    order.Service
	orderRepo order.Repository
	discounts discount.Service
	invoices  *invoice.Service
	awbs      *shipping.Service
	validate  *validator.Validate
}

func NewAdminHandler(
	products product.Service,
	orders order.Service,
	orderRepo order.Repository,
	discounts discount.Service,
	invoices *invoice.Service,
	awbs *shipping.Service,
) *AdminHandler {
	return &AdminHandler{
		products:  products,
		orders:    orders,
		orderRepo: orderRepo,
		discounts: discounts,
		invoices:  invoices,
		awbs:      awbs,
		validate:  validator.New(),
	}
}

// HandleResource dispatches /admin?type=orders|products by method.
func (h *AdminHandler) HandleResource(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case "orders":
		h.handleOrders(w, r)
	case "products":
		h.handleProducts(w, r)
	default:
		respondWithError(w, http.StatusBadRequest, "unknown resource type")
	}
}

func (h *AdminHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if idParam := r.URL.Query().Get("id"); idParam != "" {
			id, err := strconv.ParseInt(idParam, 10, 64)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "invalid order id")
				return
			}
			o, err := h.orders.GetByID(r.Context(), id)
			if err != nil {
				respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to load order"))
				return
			}
			respondWithJSON(w, http.StatusOK, o)
			return
		}
		orders, err := h.orders.List(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("handler: failed to list orders")
			respondWithError(w, http.StatusInternalServerError, "failed to load orders")
			return
		}
		respondWithJSON(w, http.StatusOK, orders)

	case http.MethodPut:
		var req struct {
			ID     int64  `json:"id" validate:"required"`
			Status string `json:"status" validate:"required"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			respondWithError(w, http.StatusBadRequest, "id and status are required")
			return
		}
		if err := h.orders.UpdateStatus(r.Context(), req.ID, req.Status); err != nil {
			respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to update order"))
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})

	case http.MethodDelete:
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid order id")
			return
		}
		if err := h.orders.Delete(r.Context(), id); err != nil {
			respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to delete order"))
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type productPayload struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"originalPrice"`
	StockQuantity int      `json:"stockQuantity" validate:"gte=0"`
	Image         string   `json:"image"`
	Gallery       []string `json:"gallery"`
	Details       []string `json:"details"`
	Colors        []string `json:"colors"`
}

func (p *productPayload) toModel() *product.Product {
	m := &product.Product{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Price:         decimal.NewFromFloat(p.Price),
		StockQuantity: p.StockQuantity,
		Image:         p.Image,
		Gallery:       p.Gallery,
		Details:       p.Details,
		Colors:        p.Colors,
	}
	if p.OriginalPrice != nil {
		op := decimal.NewFromFloat(*p.OriginalPrice)
		m.OriginalPrice = &op
	}
	return m
}

func (h *AdminHandler) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := h.products.List(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("handler: failed to list products")
			respondWithError(w, http.StatusInternalServerError, "failed to load products")
			return
		}
		respondWithJSON(w, http.StatusOK, products)

	case http.MethodPost:
		p, ok := h.decodeProduct(w, r)
		if !ok {
			return
		}
		id, err := h.products.Create(r.Context(), p.toModel())
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})

	case http.MethodPut:
		p, ok := h.decodeProduct(w, r)
		if !ok {
			return
		}
		if p.ID == 0 {
			respondWithError(w, http.StatusBadRequest, "product id is required")
			return
		}
		if err := h.products.Update(r.Context(), p.toModel()); err != nil {
			respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to update product"))
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})

	case http.MethodDelete:
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid product id")
			return
		}
		if err := h.products.Delete(r.Context(), id); err != nil {
			respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to delete product"))
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *AdminHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (*productPayload, bool) {
	var p productPayload
	if err := decodeJSON(r, &p); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := h.validate.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			respondWithError(w, http.StatusBadRequest, formatValidationErrors(verrs))
			return nil, false
		}
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return nil, false
	}
	return &p, true
}

type discountPayload struct {
	ID             int64   `json:"id"`
	Code           string  `json:"code" validate:"required"`
	DiscountType   string  `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue  float64 `json:"discountValue" validate:"gte=0"`
	MinOrderAmount float64 `json:"minOrderAmount" validate:"gte=0"`
	MaxUses        *int    `json:"maxUses"`
	ValidFrom      *string `json:"validFrom"`
	ValidUntil     *string `json:"validUntil"`
	IsActive       bool    `json:"isActive"`
}

func (p *discountPayload) toModel() (*discount.Code, error) {
	c := &discount.Code{
		ID:             p.ID,
		Code:           p.Code,
		DiscountType:   p.DiscountType,
		DiscountValue:  decimal.NewFromFloat(p.DiscountValue),
		MinOrderAmount: decimal.NewFromFloat(p.MinOrderAmount),
		MaxUses:        p.MaxUses,
		IsActive:       p.IsActive,
	}
	if p.ValidFrom != nil {
		t, err := time.Parse(time.RFC3339, *p.ValidFrom)
		if err != nil {
			return nil, err
		}
		c.ValidFrom = &t
	}
	if p.ValidUntil != nil {
		t, err := time.Parse(time.RFC3339, *p.ValidUntil)
		if err != nil {
			return nil, err
		}
		c.ValidUntil = &t
	}
	return c, nil
}

func (h *AdminHandler) HandleDiscountCodes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		codes, err := h.discounts.List(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("handler: failed to list discount codes")
			respondWithError(w, http.StatusInternalServerError, "failed to load discount codes")
			return
		}
		respondWithJSON(w, http.StatusOK, codes)

	case http.MethodPost, http.MethodPut:
		var p discountPayload
		if err := decodeJSON(r, &p); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.validate.Struct(p); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				respondWithError(w, http.StatusBadRequest, formatValidationErrors(verrs))
				return
			}
			respondWithError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
		c, err := p.toModel()
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid validity window")
			return
		}
		if r.Method == http.MethodPost {
			id, err := h.discounts.Create(r.Context(), c)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
			return
		}
		if c.ID == 0 {
			respondWithError(w, http.StatusBadRequest, "discount code id is required")
			return
		}
		if err := h.discounts.Update(r.Context(), c); err != nil {
			respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to update discount code"))
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})

	case http.MethodDelete:
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid discount code id")
			return
		}
		if err := h.discounts.Delete(r.Context(), id); err != nil {
			respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to delete discount code"))
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type bulkOrdersRequest struct {
	OrderIDs       []int64 `json:"orderIds" validate:"required,min=1"`
	CourierService string  `json:"courierService"`
	Format         string  `json:"format"`
}

func (h *AdminHandler) SendInvoices(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBulk(w, r)
	if !ok {
		return
	}
	results := h.invoices.SendInvoices(r.Context(), req.OrderIDs)
	respondWithJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *AdminHandler) GenerateAWBs(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBulk(w, r)
	if !ok {
		return
	}
	if req.CourierService == "" {
		respondWithError(w, http.StatusBadRequest, "courierService is required")
		return
	}
	results := h.awbs.GenerateAWBs(r.Context(), req.OrderIDs, req.CourierService)
	respondWithJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *AdminHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBulk(w, r)
	if !ok {
		return
	}

	orders, err := h.orderRepo.GetByIDs(r.Context(), req.OrderIDs)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to load orders for export")
		respondWithError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	out, contentType, err := export.Orders(orders, req.Format)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		log.Error().Err(err).Msg("handler: failed to write export")
	}
}

func (h *AdminHandler) decodeBulk(w http.ResponseWriter, r *http.Request) (*bulkOrdersRequest, bool) {
	var req bulkOrdersRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "orderIds is required")
		return nil, false
	}
	return &req, true
}
