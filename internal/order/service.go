package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lunetoptics/lunet-backend/internal/discount"
	"github.com/lunetoptics/lunet-backend/internal/pricing"
)

// ErrValidation marks missing or malformed checkout input. Handlers map it
// to 400.
var ErrValidation = errors.New("validation failed")

// Notifier dispatches the customer and merchant order emails. Failures are a
// logged side-effect, never part of the order transaction.
type Notifier interface {
	SendOrderEmails(ctx context.Context, o *Order) error
}

// CashOnDeliveryRequest is the payload of the synchronous ramburs checkout.
type CashOnDeliveryRequest struct {
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	County         string
	City           string
	Address        string
	Items          []Item
	ShippingMethod string
	DiscountCode   string
}

type Service interface {
	CreateCashOnDelivery(ctx context.Context, req *CashOnDeliveryRequest) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo      Repository
	discounts discount.Service
	notifier  Notifier
}

func NewService(repo Repository, discounts discount.Service, notifier Notifier) Service {
	return &service{repo: repo, discounts: discounts, notifier: notifier}
}

func (s *service) CreateCashOnDelivery(ctx context.Context, req *CashOnDeliveryRequest) (*Order, error) {
	if err := validateCashOnDelivery(req); err != nil {
		return nil, err
	}

	lineItems := make([]pricing.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		lineItems = append(lineItems, pricing.LineItem{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	b := pricing.Quote(lineItems, req.ShippingMethod, nil)

	if req.DiscountCode != "" {
		validation, err := s.discounts.Validate(ctx, req.DiscountCode, b.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("service: failed to validate discount code: %w", err)
		}
		if !validation.Valid {
			return nil, fmt.Errorf("%w: %s", ErrValidation, validation.Message)
		}
		// The validated amount is authoritative for this subtotal.
		b.DiscountCode = validation.Code
		b.DiscountAmount = validation.DiscountAmount
		b.Total = b.Subtotal.Add(b.ShippingCost).Sub(b.DiscountAmount).Round(2)
	}

	return s.persistCashOnDelivery(ctx, req, b)
}

func (s *service) persistCashOnDelivery(ctx context.Context, req *CashOnDeliveryRequest, b pricing.Breakdown) (*Order, error) {
	if !b.Total.IsPositive() {
		return nil, fmt.Errorf("%w: order total must be positive", ErrValidation)
	}

	o := &Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingCounty:  req.County,
		ShippingCity:    req.City,
		ShippingAddress: req.Address,
		Items:           req.Items,
		Subtotal:        b.Subtotal,
		ShippingMethod:  b.ShippingMethod,
		ShippingCost:    b.ShippingCost,
		DiscountCode:    b.DiscountCode,
		DiscountAmount:  b.DiscountAmount,
		TotalAmount:     b.Total,
		PaymentMethod:   PaymentRamburs,
		Status:          StatusPending,
	}

	id, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}
	o.ID = id

	if o.DiscountCode != "" {
		if err := s.discounts.Redeem(ctx, o.DiscountCode); err != nil {
			// The order is already committed; a lost redemption is logged,
			// not propagated.
			log.Error().Err(err).Int64("order_id", o.ID).Str("code", o.DiscountCode).
				Msg("service: failed to redeem discount code")
		}
	}

	s.dispatchEmails(o)

	log.Info().Int64("order_id", o.ID).Str("payment_method", o.PaymentMethod).
		Str("total", o.TotalAmount.StringFixed(2)).Msg("service: order created")

	return o, nil
}

// dispatchEmails is fire-and-forget relative to the HTTP response.
func (s *service) dispatchEmails(o *Order) {
	if s.notifier == nil {
		return
	}
	go func(o *Order) {
		if err := s.notifier.SendOrderEmails(context.Background(), o); err != nil {
			log.Error().Err(err).Int64("order_id", o.ID).Msg("service: failed to send order emails")
		}
	}(o)
}

func (s *service) GetByID(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("%w: status is required", ErrValidation)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateCashOnDelivery(req *CashOnDeliveryRequest) error {
	switch {
	case strings.TrimSpace(req.CustomerName) == "":
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	case strings.TrimSpace(req.CustomerPhone) == "":
		return fmt.Errorf("%w: customer phone is required", ErrValidation)
	case strings.TrimSpace(req.County) == "":
		return fmt.Errorf("%w: county is required", ErrValidation)
	case strings.TrimSpace(req.City) == "":
		return fmt.Errorf("%w: city is required", ErrValidation)
	case strings.TrimSpace(req.Address) == "":
		return fmt.Errorf("%w: address is required", ErrValidation)
	case len(req.Items) == 0:
		return fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item quantity must be positive", ErrValidation)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item price cannot be negative", ErrValidation)
		}
	}
	return nil
}
