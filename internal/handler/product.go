package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lunetoptics/lunet-backend/internal/product"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list products")
		respondWithError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		code := mapErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("product_id", id).Msg("handler: failed to get product")
		}
		respondWithError(w, code, clientMessage(err, "failed to load product"))
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}
