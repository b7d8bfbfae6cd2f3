// Package shipping generates courier waybills (AWB) for orders.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lunetoptics/lunet-backend/internal/config"
)

// AWBRequest carries what the carrier needs to print a label.
type AWBRequest struct {
	CourierService string          `json:"courier_service"`
	RecipientName  string          `json:"recipient_name"`
	RecipientPhone string          `json:"recipient_phone"`
	County         string          `json:"county"`
	City           string          `json:"city"`
	Address        string          `json:"address"`
	// CashOnDelivery is the amount the courier collects at the door; zero
	// for card-paid orders.
	CashOnDelivery decimal.Decimal `json:"cash_on_delivery"`
	Reference      string          `json:"reference"`
}

// Carrier creates one AWB and returns its tracking number.
type Carrier interface {
	CreateAWB(ctx context.Context, req *AWBRequest) (string, error)
}

type CourierClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewCourierClient(cfg config.CourierConfig) *CourierClient {
	return &CourierClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

func (c *CourierClient) CreateAWB(ctx context.Context, awb *AWBRequest) (string, error) {
	body, err := json.Marshal(awb)
	if err != nil {
		return "", fmt.Errorf("courier: failed to encode AWB request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/awb", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("courier: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("courier: request failed: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		AWBNumber string `json:"awb_number"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("courier: failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.AWBNumber == "" {
		return "", fmt.Errorf("courier: AWB rejected: %s", out.Message)
	}
	return out.AWBNumber, nil
}
