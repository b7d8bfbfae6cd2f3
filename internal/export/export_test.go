package export_test

import (
	"encoding/csv"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lunetoptics/lunet-backend/internal/export"
	"github.com/lunetoptics/lunet-backend/internal/order"
)

func sampleOrders() []order.Order {
	created := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return []order.Order{
		{
			ID:              1,
			CustomerName:    "Ion Popescu",
			CustomerEmail:   "ion@example.com",
			CustomerPhone:   "0722123456",
			ShippingCounty:  "Cluj",
			ShippingCity:    "Cluj-Napoca",
			ShippingAddress: "Str. Horea 12",
			Items: []order.Item{
				{Name: "Wayfarer", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
			},
			Subtotal:       decimal.NewFromInt(200),
			ShippingMethod: "courier",
			ShippingCost:   decimal.NewFromInt(25),
			DiscountCode:   "SAVE10",
			DiscountAmount: decimal.NewFromInt(20),
			TotalAmount:    decimal.NewFromInt(205),
			PaymentMethod:  order.PaymentRamburs,
			Status:         order.StatusPending,
			CreatedAt:      created,
		},
		{
			ID:             2,
			CustomerName:   "Maria Ionescu",
			TotalAmount:    decimal.NewFromInt(215),
			Subtotal:       decimal.NewFromInt(200),
			ShippingCost:   decimal.NewFromInt(15),
			DiscountAmount: decimal.Zero,
			ShippingMethod: "easybox",
			PaymentMethod:  order.PaymentCard,
			Status:         order.StatusPaid,
			CreatedAt:      created,
		},
	}
}

func TestOrdersCSV(t *testing.T) {
	out, err := export.OrdersCSV(sampleOrders())
	assert.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	assert.NoError(t, err)

	if assert.Len(t, records, 3, "header plus two orders") {
		assert.Equal(t, "id", records[0][0])
		assert.Equal(t, "awb_number", records[0][len(records[0])-1])

		assert.Equal(t, "1", records[1][0])
		assert.Equal(t, "Ion Popescu", records[1][2])
		assert.Equal(t, "2x Wayfarer @ 100.00", records[1][8])
		assert.Equal(t, "205.00", records[1][14])
		assert.Equal(t, "ramburs", records[1][15])

		assert.Equal(t, "2", records[2][0])
		assert.Equal(t, "card", records[2][15])
	}
}

func TestOrdersXML(t *testing.T) {
	out, err := export.OrdersXML(sampleOrders())
	assert.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out), xml.Header))

	var doc struct {
		Orders []struct {
			ID          int64  `xml:"id"`
			Customer    string `xml:"customer_name"`
			TotalAmount string `xml:"total_amount"`
			Items       []struct {
				Name     string `xml:"name"`
				Quantity int    `xml:"quantity"`
			} `xml:"items>item"`
		} `xml:"order"`
	}
	assert.NoError(t, xml.Unmarshal(out, &doc))

	if assert.Len(t, doc.Orders, 2) {
		assert.Equal(t, int64(1), doc.Orders[0].ID)
		assert.Equal(t, "Ion Popescu", doc.Orders[0].Customer)
		assert.Equal(t, "205.00", doc.Orders[0].TotalAmount)
		if assert.Len(t, doc.Orders[0].Items, 1) {
			assert.Equal(t, "Wayfarer", doc.Orders[0].Items[0].Name)
			assert.Equal(t, 2, doc.Orders[0].Items[0].Quantity)
		}
	}
}

func TestOrders_UnknownFormat(t *testing.T) {
	_, _, err := export.Orders(nil, "pdf")
	assert.Error(t, err)

	out, contentType, err := export.Orders(sampleOrders(), export.FormatExcel)
	assert.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.NotEmpty(t, out)
}
