package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lunetoptics/lunet-backend/internal/checkout"
)

const maxWebhookBody = 64 * 1024

// WebhookHandler receives signed payment-processor events. The raw body is
// required for signature verification, so it is read before any decoding.
type WebhookHandler struct {
	sessions checkout.Service
}

func NewWebhookHandler(sessions checkout.Service) *WebhookHandler {
	return &WebhookHandler{sessions: sessions}
}

func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	err = h.sessions.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, checkout.ErrBadSignature) {
		respondWithError(w, http.StatusBadRequest, "invalid signature")
		return
	}
	if err != nil {
		// Answer 200 anyway: the event was authentic, and retrying it
		// would not help. The failure is ours to investigate.
		log.Error().Err(err).Msg("handler: webhook processing failed")
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
