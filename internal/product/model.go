package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusOutOfStock Status = "out_of_stock"
)

// DeriveStatus recomputes the product status from stock. Status is never set
// independently; every write path goes through this.
func DeriveStatus(stock int) Status {
	if stock > 0 {
		return StatusActive
	}
	return StatusOutOfStock
}

type Product struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	StockQuantity int              `json:"stock_quantity"`
	Status        Status           `json:"status"`
	Image         string           `json:"image"`
	Gallery       []string         `json:"gallery"`
	Details       []string         `json:"details"`
	Colors        []string         `json:"colors"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
