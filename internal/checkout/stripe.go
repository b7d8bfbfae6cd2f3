package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/lunetoptics/lunet-backend/internal/config"
	"github.com/lunetoptics/lunet-backend/internal/order"
)

// StripeClient implements PaymentClient against Stripe hosted checkout.
type StripeClient struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeClient{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		currency:      cfg.Currency,
	}
}

func (c *StripeClient) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(req.ClientReferenceID),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"RO"}),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	for _, ln := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(ln.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(c.currency),
				UnitAmount: stripe.Int64(ln.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(ln.Name),
				},
			},
		})
	}

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (c *StripeClient) GetSession(ctx context.Context, id string) (*CompletedSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	s, err := c.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to fetch checkout session %s: %w", id, err)
	}

	cs := &CompletedSession{
		ID:       s.ID,
		Metadata: s.Metadata,
	}
	if s.CustomerDetails != nil {
		cs.CustomerName = s.CustomerDetails.Name
		cs.CustomerEmail = s.CustomerDetails.Email
		cs.CustomerPhone = s.CustomerDetails.Phone
	}
	if s.ShippingDetails != nil && s.ShippingDetails.Address != nil {
		a := s.ShippingDetails.Address
		cs.Address = &order.CollectedAddress{
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		}
	}
	if s.LineItems != nil {
		for _, li := range s.LineItems.Data {
			ln := SessionLine{
				Name:     li.Description,
				Quantity: li.Quantity,
			}
			if li.Price != nil {
				ln.UnitAmount = li.Price.UnitAmount
			}
			cs.Lines = append(cs.Lines, ln)
		}
	}
	return cs, nil
}

func (c *StripeClient) VerifyEvent(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("stripe: failed to decode event object: %w", err)
	}
	return &Event{Type: string(event.Type), SessionID: obj.ID}, nil
}
