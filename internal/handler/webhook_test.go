package handler_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lunetoptics/lunet-backend/internal/checkout"
	"github.com/lunetoptics/lunet-backend/internal/handler"
)

func TestWebhookHandler_HandleWebhook(t *testing.T) {
	t.Run("passes the raw body and signature header through", func(t *testing.T) {
		var gotPayload []byte
		var gotSig string
		sessions := &mockCheckoutService{
			handleWebhookFunc: func(ctx context.Context, payload []byte, signature string) error {
				gotPayload = payload
				gotSig = signature
				return nil
			},
		}
		h := handler.NewWebhookHandler(sessions)

		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{"type":"checkout.session.completed"}`)))
		req.Header.Set("Stripe-Signature", "t=1,v1=abc")
		rr := httptest.NewRecorder()

		h.HandleWebhook(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"received":true}`, rr.Body.String())
		assert.Equal(t, []byte(`{"type":"checkout.session.completed"}`), gotPayload)
		assert.Equal(t, "t=1,v1=abc", gotSig)
	})

	t.Run("invalid signature is rejected", func(t *testing.T) {
		sessions := &mockCheckoutService{
			handleWebhookFunc: func(ctx context.Context, payload []byte, signature string) error {
				return checkout.ErrBadSignature
			},
		}
		h := handler.NewWebhookHandler(sessions)

		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{}`)))
		rr := httptest.NewRecorder()

		h.HandleWebhook(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("processing failure still answers 200", func(t *testing.T) {
		sessions := &mockCheckoutService{
			handleWebhookFunc: func(ctx context.Context, payload []byte, signature string) error {
				return errors.New("database is down")
			},
		}
		h := handler.NewWebhookHandler(sessions)

		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{}`)))
		rr := httptest.NewRecorder()

		h.HandleWebhook(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"received":true}`, rr.Body.String())
	})
}
