// Package export renders selected orders as XML or CSV documents. It is
// pure formatting; nothing here writes state.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lunetoptics/lunet-backend/internal/order"
)

const (
	FormatXML   = "xml"
	FormatExcel = "excel"
)

// Orders renders the given orders in the requested format and returns the
// document bytes together with its content type.
func Orders(orders []order.Order, format string) ([]byte, string, error) {
	switch format {
	case FormatXML:
		out, err := OrdersXML(orders)
		return out, "application/xml", err
	case FormatExcel:
		out, err := OrdersCSV(orders)
		return out, "text/csv", err
	default:
		return nil, "", fmt.Errorf("unknown export format %q", format)
	}
}

type xmlItem struct {
	Name      string `xml:"name"`
	Quantity  int    `xml:"quantity"`
	UnitPrice string `xml:"unit_price"`
}

type xmlOrder struct {
	ID             int64     `xml:"id"`
	CreatedAt      string    `xml:"created_at"`
	CustomerName   string    `xml:"customer_name"`
	CustomerEmail  string    `xml:"customer_email"`
	CustomerPhone  string    `xml:"customer_phone"`
	County         string    `xml:"county"`
	City           string    `xml:"city"`
	Address        string    `xml:"address"`
	Items          []xmlItem `xml:"items>item"`
	Subtotal       string    `xml:"subtotal"`
	ShippingMethod string    `xml:"shipping_method"`
	ShippingCost   string    `xml:"shipping_cost"`
	DiscountCode   string    `xml:"discount_code,omitempty"`
	DiscountAmount string    `xml:"discount_amount"`
	TotalAmount    string    `xml:"total_amount"`
	PaymentMethod  string    `xml:"payment_method"`
	Status         string    `xml:"status"`
	InvoiceNumber  string    `xml:"invoice_number,omitempty"`
	AWBNumber      string    `xml:"awb_number,omitempty"`
}

type xmlDocument struct {
	XMLName xml.Name   `xml:"orders"`
	Orders  []xmlOrder `xml:"order"`
}

func OrdersXML(orders []order.Order) ([]byte, error) {
	doc := xmlDocument{Orders: make([]xmlOrder, 0, len(orders))}
	for _, o := range orders {
		xo := xmlOrder{
			ID:             o.ID,
			CreatedAt:      o.CreatedAt.Format(time.RFC3339),
			CustomerName:   o.CustomerName,
			CustomerEmail:  o.CustomerEmail,
			CustomerPhone:  o.CustomerPhone,
			County:         o.ShippingCounty,
			City:           o.ShippingCity,
			Address:        o.ShippingAddress,
			Subtotal:       o.Subtotal.StringFixed(2),
			ShippingMethod: o.ShippingMethod,
			ShippingCost:   o.ShippingCost.StringFixed(2),
			DiscountCode:   o.DiscountCode,
			DiscountAmount: o.DiscountAmount.StringFixed(2),
			TotalAmount:    o.TotalAmount.StringFixed(2),
			PaymentMethod:  o.PaymentMethod,
			Status:         o.Status,
			InvoiceNumber:  o.OblioInvoiceNo,
			AWBNumber:      o.AwbNumber,
		}
		for _, it := range o.Items {
			xo.Items = append(xo.Items, xmlItem{
				Name:      it.Name,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice.StringFixed(2),
			})
		}
		doc.Orders = append(doc.Orders, xo)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: failed to marshal XML: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

var csvHeader = []string{
	"id", "created_at", "customer_name", "customer_email", "customer_phone",
	"county", "city", "address", "items", "subtotal", "shipping_method",
	"shipping_cost", "discount_code", "discount_amount", "total_amount",
	"payment_method", "status", "invoice_number", "awb_number",
}

func OrdersCSV(orders []order.Order) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("export: failed to write CSV header: %w", err)
	}
	for _, o := range orders {
		record := []string{
			strconv.FormatInt(o.ID, 10),
			o.CreatedAt.Format(time.RFC3339),
			o.CustomerName,
			o.CustomerEmail,
			o.CustomerPhone,
			o.ShippingCounty,
			o.ShippingCity,
			o.ShippingAddress,
			itemsSummary(o.Items),
			o.Subtotal.StringFixed(2),
			o.ShippingMethod,
			o.ShippingCost.StringFixed(2),
			o.DiscountCode,
			o.DiscountAmount.StringFixed(2),
			o.TotalAmount.StringFixed(2),
			o.PaymentMethod,
			o.Status,
			o.OblioInvoiceNo,
			o.AwbNumber,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("export: failed to write CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func itemsSummary(items []order.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%dx %s @ %s", it.Quantity, it.Name, it.UnitPrice.StringFixed(2)))
	}
	return strings.Join(parts, "; ")
}
