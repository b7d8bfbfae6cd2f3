// Package invoice submits orders to the Oblio accounting API and records
// the returned invoice identifiers.
package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lunetoptics/lunet-backend/internal/config"
	"github.com/lunetoptics/lunet-backend/internal/order"
)

// Invoicer issues one invoice per order.
type Invoicer interface {
	CreateInvoice(ctx context.Context, o *order.Order) (id, number string, err error)
}

type OblioClient struct {
	httpClient  *http.Client
	baseURL     string
	email       string
	secretToken string
	cif         string
	series      string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewOblioClient(cfg config.OblioConfig) *OblioClient {
	return &OblioClient{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     cfg.BaseURL,
		email:       cfg.Email,
		secretToken: cfg.SecretToken,
		cif:         cfg.CIF,
		series:      cfg.SeriesName,
	}
}

type oblioProduct struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	VATInc   int    `json:"vatIncluded"`
}

type invoiceRequest struct {
	CIF        string         `json:"cif"`
	SeriesName string         `json:"seriesName"`
	Client     oblioClient    `json:"client"`
	Products   []oblioProduct `json:"products"`
}

type oblioClient struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
}

type invoiceResponse struct {
	Status        int    `json:"status"`
	StatusMessage string `json:"statusMessage"`
	Data          struct {
		ID         string `json:"id"`
		SeriesName string `json:"seriesName"`
		Number     string `json:"number"`
	} `json:"data"`
}

// CreateInvoice rebuilds the invoice lines from the order's stored snapshot
// (shipping and discount become their own lines) and submits it to Oblio.
func (c *OblioClient) CreateInvoice(ctx context.Context, o *order.Order) (string, string, error) {
	token, err := c.authorize(ctx)
	if err != nil {
		return "", "", err
	}

	products := make([]oblioProduct, 0, len(o.Items)+2)
	for _, it := range o.Items {
		products = append(products, oblioProduct{
			Name:     it.Name,
			Price:    it.UnitPrice.StringFixed(2),
			Quantity: it.Quantity,
			VATInc:   1,
		})
	}
	if o.ShippingCost.IsPositive() {
		products = append(products, oblioProduct{
			Name:     "Transport (" + o.ShippingMethod + ")",
			Price:    o.ShippingCost.StringFixed(2),
			Quantity: 1,
			VATInc:   1,
		})
	}
	if o.DiscountAmount.IsPositive() {
		products = append(products, oblioProduct{
			Name:     "Reducere " + o.DiscountCode,
			Price:    "-" + o.DiscountAmount.StringFixed(2),
			Quantity: 1,
			VATInc:   1,
		})
	}

	body, err := json.Marshal(invoiceRequest{
		CIF:        c.cif,
		SeriesName: c.series,
		Client: oblioClient{
			Name:    o.CustomerName,
			Phone:   o.CustomerPhone,
			Email:   o.CustomerEmail,
			Address: o.ShippingAddress,
			City:    o.ShippingCity,
			State:   o.ShippingCounty,
		},
		Products: products,
	})
	if err != nil {
		return "", "", fmt.Errorf("oblio: failed to encode invoice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/docs/invoice", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("oblio: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("oblio: request failed: %w", err)
	}
	defer resp.Body.Close()

	var out invoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("oblio: failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.Status != http.StatusOK {
		return "", "", fmt.Errorf("oblio: invoice rejected: %s", out.StatusMessage)
	}

	number := strings.TrimSpace(out.Data.SeriesName + " " + out.Data.Number)
	return out.Data.ID, number, nil
}

// authorize returns the cached bearer token or fetches a fresh one. The
// client is shared across requests, so the cache is guarded.
func (c *OblioClient) authorize(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("client_id", c.email)
	form.Set("client_secret", c.secretToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/authorize/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("oblio: failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("oblio: token request failed: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("oblio: failed to decode token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.AccessToken == "" {
		return "", fmt.Errorf("oblio: authorization failed with status %d", resp.StatusCode)
	}

	c.token = out.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn-60) * time.Second)
	return c.token, nil
}
