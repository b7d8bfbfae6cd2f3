// Package pricing computes order totals. It is pure: it never touches the
// database and takes everything it needs by value.
package pricing

import "github.com/shopspring/decimal"

const (
	MethodEasybox = "easybox"
	MethodCourier = "courier"

	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

var (
	easyboxRate = decimal.NewFromInt(15)
	courierRate = decimal.NewFromInt(25)
	hundred     = decimal.NewFromInt(100)
)

// LineItem is one cart position as snapshotted at checkout time.
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Discount carries the fields of a discount code that matter for the
// arithmetic. Validity checks happen elsewhere, before a Discount is
// handed to Quote.
type Discount struct {
	Code  string
	Type  string
	Value decimal.Decimal
}

// Breakdown is the monetary result frozen into an order at creation time.
type Breakdown struct {
	Subtotal       decimal.Decimal
	ShippingMethod string
	ShippingCost   decimal.Decimal
	DiscountCode   string
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// Subtotal sums unit price times quantity over all items, rounded to 2
// decimals.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}

// ShippingCost returns the flat rate for the method. Unknown methods fall
// back to the courier rate.
func ShippingCost(method string) decimal.Decimal {
	if method == MethodEasybox {
		return easyboxRate
	}
	return courierRate
}

// DiscountAmount computes the effective discount for a subtotal, clamped so
// it can never exceed the subtotal, rounded to 2 decimals.
func DiscountAmount(discountType string, value, subtotal decimal.Decimal) decimal.Decimal {
	var raw decimal.Decimal
	switch discountType {
	case DiscountTypePercentage:
		raw = subtotal.Mul(value).Div(hundred)
	default:
		raw = value
	}
	if raw.GreaterThan(subtotal) {
		raw = subtotal
	}
	if raw.IsNegative() {
		raw = decimal.Zero
	}
	return raw.Round(2)
}

// Quote produces the full breakdown for a cart. The discount, if any, must
// already have passed validation.
func Quote(items []LineItem, method string, d *Discount) Breakdown {
	subtotal := Subtotal(items)
	shipping := ShippingCost(method)
	if method != MethodEasybox {
		method = MethodCourier
	}

	b := Breakdown{
		Subtotal:       subtotal,
		ShippingMethod: method,
		ShippingCost:   shipping,
		DiscountAmount: decimal.Zero,
	}
	if d != nil {
		b.DiscountCode = d.Code
		b.DiscountAmount = DiscountAmount(d.Type, d.Value, subtotal)
	}
	b.Total = subtotal.Add(shipping).Sub(b.DiscountAmount).Round(2)
	return b
}
