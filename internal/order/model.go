package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCard    = "card"
	PaymentRamburs = "ramburs"

	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Item is one line of the immutable cart snapshot copied into the order at
// creation time. It is never re-derived from the live product table.
type Item struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CollectedAddress is the shipping address as returned by the payment
// processor for card orders.
type CollectedAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type Order struct {
	ID               int64             `json:"id"`
	CustomerName     string            `json:"customer_name"`
	CustomerEmail    string            `json:"customer_email"`
	CustomerPhone    string            `json:"customer_phone"`
	ShippingCounty   string            `json:"shipping_county"`
	ShippingCity     string            `json:"shipping_city"`
	ShippingAddress  string            `json:"shipping_address"`
	CollectedAddress *CollectedAddress `json:"collected_address,omitempty"`
	Items            []Item            `json:"items"`
	Subtotal         decimal.Decimal   `json:"subtotal"`
	ShippingMethod   string            `json:"shipping_method"`
	ShippingCost     decimal.Decimal   `json:"shipping_cost"`
	DiscountCode     string            `json:"discount_code,omitempty"`
	DiscountAmount   decimal.Decimal   `json:"discount_amount"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	PaymentMethod    string            `json:"payment_method"`
	Status           string            `json:"status"`
	StripeSessionID  string            `json:"stripe_session_id,omitempty"`
	OblioInvoiceID   string            `json:"oblio_invoice_id,omitempty"`
	OblioInvoiceNo   string            `json:"oblio_invoice_number,omitempty"`
	AwbNumber        string            `json:"awb_number,omitempty"`
	AwbCourier       string            `json:"awb_courier,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}
