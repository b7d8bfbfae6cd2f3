package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lunetoptics/lunet-backend/internal/discount"
	"github.com/lunetoptics/lunet-backend/internal/handler"
)

func TestDiscountHandler_ValidateDiscount(t *testing.T) {
	t.Run("valid code returns the discount amount", func(t *testing.T) {
		svc := &mockDiscountService{
			validateFunc: func(ctx context.Context, code string, subtotal decimal.Decimal) (*discount.Validation, error) {
				assert.Equal(t, "SAVE10", code)
				assert.True(t, subtotal.Equal(decimal.NewFromInt(200)))
				return &discount.Validation{
					Valid:          true,
					Code:           "SAVE10",
					DiscountAmount: decimal.NewFromInt(20),
				}, nil
			},
		}
		h := handler.NewDiscountHandler(svc)

		body, _ := json.Marshal(map[string]any{"code": "SAVE10", "subtotal": 200.0})
		req := httptest.NewRequest(http.MethodPost, "/validate-discount", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.ValidateDiscount(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Valid          bool    `json:"valid"`
			DiscountAmount float64 `json:"discountAmount"`
		}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.Equal(t, 20.0, resp.DiscountAmount)
	})

	t.Run("invalid code returns the refusal message with 200", func(t *testing.T) {
		svc := &mockDiscountService{
			validateFunc: func(ctx context.Context, code string, subtotal decimal.Decimal) (*discount.Validation, error) {
				return &discount.Validation{Valid: false, Message: "Codul de reducere a expirat"}, nil
			},
		}
		h := handler.NewDiscountHandler(svc)

		body, _ := json.Marshal(map[string]any{"code": "OLD", "subtotal": 50.0})
		req := httptest.NewRequest(http.MethodPost, "/validate-discount", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.ValidateDiscount(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Valid   bool   `json:"valid"`
			Message string `json:"message"`
		}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Valid)
		assert.Equal(t, "Codul de reducere a expirat", resp.Message)
	})

	t.Run("missing code rejected", func(t *testing.T) {
		h := handler.NewDiscountHandler(&mockDiscountService{})

		body, _ := json.Marshal(map[string]any{"subtotal": 50.0})
		req := httptest.NewRequest(http.MethodPost, "/validate-discount", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.ValidateDiscount(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
