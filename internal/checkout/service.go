package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lunetoptics/lunet-backend/internal/discount"
	"github.com/lunetoptics/lunet-backend/internal/order"
	"github.com/lunetoptics/lunet-backend/internal/pricing"
)

// Metadata keys attached to the hosted session so the pricing breakdown can
// be recovered at webhook time without re-deriving it.
const (
	metaSubtotal       = "subtotal"
	metaShippingMethod = "shipping_method"
	metaShippingCost   = "shipping_cost"
	metaDiscountCode   = "discount_code"
	metaDiscountAmount = "discount_amount"
	metaItemCount      = "item_count"
)

// CartRequest is the payload of the card checkout's first phase.
type CartRequest struct {
	Items          []order.Item
	ShippingMethod string
	DiscountCode   string
}

type Service interface {
	// CreateSession builds a hosted payment session and returns its
	// redirect URL. No order row exists until the webhook confirms payment.
	CreateSession(ctx context.Context, req *CartRequest) (string, error)
	// HandleWebhook verifies and processes one payment-processor event.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type service struct {
	client    PaymentClient
	orders    order.Repository
	discounts discount.Service
	notifier  order.Notifier
}

func NewService(client PaymentClient, orders order.Repository, discounts discount.Service, notifier order.Notifier) Service {
	return &service{client: client, orders: orders, discounts: discounts, notifier: notifier}
}

func (s *service) CreateSession(ctx context.Context, req *CartRequest) (string, error) {
	if len(req.Items) == 0 {
		return "", fmt.Errorf("%w: cart is empty", order.ErrValidation)
	}

	lineItems := make([]pricing.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return "", fmt.Errorf("%w: item quantity must be positive", order.ErrValidation)
		}
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
			return "", fmt.Errorf("service: failed to validate discount code: %w", err)
		}
		if !validation.Valid {
			return "", fmt.Errorf("%w: %s", order.ErrValidation, validation.Message)
		}
		b.DiscountCode = validation.Code
		b.DiscountAmount = validation.DiscountAmount
		b.Total = b.Subtotal.Add(b.ShippingCost).Sub(b.DiscountAmount).Round(2)
	}

	ref, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("service: failed to generate client reference: %w", err)
	}

	sreq := &SessionRequest{
		ClientReferenceID: ref.String(),
		Metadata: map[string]string{
			metaSubtotal:       b.Subtotal.StringFixed(2),
			metaShippingMethod: b.ShippingMethod,
			metaShippingCost:   b.ShippingCost.StringFixed(2),
			metaDiscountCode:   b.DiscountCode,
			metaDiscountAmount: b.DiscountAmount.StringFixed(2),
			metaItemCount:      strconv.Itoa(len(req.Items)),
		},
	}
	for _, it := range req.Items {
		sreq.Lines = append(sreq.Lines, SessionLine{
			Name:       it.Name,
			Quantity:   int64(it.Quantity),
			UnitAmount: toMinorUnits(it.UnitPrice),
		})
	}
	if b.ShippingCost.IsPositive() {
		sreq.Lines = append(sreq.Lines, SessionLine{
			Name:       shippingLineName(b.ShippingMethod),
			Quantity:   1,
			UnitAmount: toMinorUnits(b.ShippingCost),
		})
	}
	if b.DiscountAmount.IsPositive() {
		sreq.Lines = append(sreq.Lines, SessionLine{
			Name:       discountLineName(b.DiscountCode),
			Quantity:   1,
			UnitAmount: -toMinorUnits(b.DiscountAmount),
		})
	}

	sess, err := s.client.CreateSession(ctx, sreq)
	if err != nil {
		return "", fmt.Errorf("service: failed to create checkout session: %w", err)
	}

	log.Info().Str("session_id", sess.ID).Str("total", b.Total.StringFixed(2)).
		Msg("service: checkout session created")

	return sess.URL, nil
}

func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.client.VerifyEvent(payload, signature)
	if err != nil {
		return err
	}
	if event.Type != EventSessionCompleted {
		log.Debug().Str("type", event.Type).Msg("service: ignoring webhook event")
		return nil
	}

	sess, err := s.client.GetSession(ctx, event.SessionID)
	if err != nil {
		return fmt.Errorf("service: failed to fetch completed session: %w", err)
	}

	o, err := orderFromSession(sess)
	if err != nil {
		return fmt.Errorf("service: failed to rebuild order from session %s: %w", sess.ID, err)
	}

	id, err := s.orders.Create(ctx, o)
	if err != nil {
		if errors.Is(err, order.ErrDuplicateSession) {
			// Redelivered completion event; the order already exists.
			log.Info().Str("session_id", sess.ID).Msg("service: duplicate webhook delivery ignored")
			return nil
		}
		return fmt.Errorf("service: failed to create order from session %s: %w", sess.ID, err)
	}
	o.ID = id

	// Redemption is deferred to this point so abandoned sessions never
	// consume a use; the unique session id above guarantees it runs once.
	if o.DiscountCode != "" {
		if err := s.discounts.Redeem(ctx, o.DiscountCode); err != nil {
			log.Error().Err(err).Int64("order_id", o.ID).Str("code", o.DiscountCode).
				Msg("service: failed to redeem discount code")
		}
	}

	if s.notifier != nil {
		go func(o *order.Order) {
			if err := s.notifier.SendOrderEmails(context.Background(), o); err != nil {
				log.Error().Err(err).Int64("order_id", o.ID).Msg("service: failed to send order emails")
			}
		}(o)
	}

	log.Info().Int64("order_id", o.ID).Str("session_id", sess.ID).Msg("service: card order finalized")
	return nil
}

// orderFromSession reconstructs the order shape the cash path produces,
// using the session metadata as the authoritative pricing breakdown.
func orderFromSession(sess *CompletedSession) (*order.Order, error) {
	subtotal, err := metaDecimal(sess.Metadata, metaSubtotal)
	if err != nil {
		return nil, err
	}
	shippingCost, err := metaDecimal(sess.Metadata, metaShippingCost)
	if err != nil {
		return nil, err
	}
	discountAmount, err := metaDecimal(sess.Metadata, metaDiscountAmount)
	if err != nil {
		return nil, err
	}
	method := sess.Metadata[metaShippingMethod]
	code := sess.Metadata[metaDiscountCode]

	// Product lines come first; shipping and discount lines were appended
	// after them, so the recorded count splits the two exactly. Product
	// names never enter into it.
	count, err := strconv.Atoi(sess.Metadata[metaItemCount])
	if err != nil || count < 0 || count > len(sess.Lines) {
		return nil, fmt.Errorf("session metadata %q is invalid", metaItemCount)
	}

	items := make([]order.Item, 0, count)
	for _, ln := range sess.Lines[:count] {
		items = append(items, order.Item{
			Name:      ln.Name,
			Quantity:  int(ln.Quantity),
			UnitPrice: fromMinorUnits(ln.UnitAmount),
		})
	}

	addressLine := ""
	city := ""
	county := ""
	if sess.Address != nil {
		addressLine = strings.TrimSpace(sess.Address.Line1 + " " + sess.Address.Line2)
		city = sess.Address.City
		county = sess.Address.State
	}

	return &order.Order{
		CustomerName:     sess.CustomerName,
		CustomerEmail:    sess.CustomerEmail,
		CustomerPhone:    sess.CustomerPhone,
		ShippingCounty:   county,
		ShippingCity:     city,
		ShippingAddress:  addressLine,
		CollectedAddress: sess.Address,
		Items:            items,
		Subtotal:         subtotal,
		ShippingMethod:   method,
		ShippingCost:     shippingCost,
		DiscountCode:     code,
		DiscountAmount:   discountAmount,
		TotalAmount:      subtotal.Add(shippingCost).Sub(discountAmount).Round(2),
		PaymentMethod:    order.PaymentCard,
		Status:           order.StatusPaid,
		StripeSessionID:  sess.ID,
	}, nil
}

func metaDecimal(meta map[string]string, key string) (decimal.Decimal, error) {
	v, ok := meta[key]
	if !ok || v == "" {
		return decimal.Zero, fmt.Errorf("session metadata missing %q", key)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("session metadata %q is not a number: %w", key, err)
	}
	return d, nil
}

func shippingLineName(method string) string {
	return "Transport (" + method + ")"
}

func discountLineName(code string) string {
	return "Reducere " + code
}

func toMinorUnits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromMinorUnits(n int64) decimal.Decimal {
	return decimal.New(n, -2)
}
