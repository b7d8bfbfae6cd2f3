package discount

import (
	"time"

	"github.com/shopspring/decimal"
)

// Code is a promotional discount code. Codes are stored upper-cased and
// compared case-insensitively.
type Code struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	MaxUses        *int            `json:"max_uses,omitempty"`
	UsedCount      int             `json:"used_count"`
	ValidFrom      *time.Time      `json:"valid_from,omitempty"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}
