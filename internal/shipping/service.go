package shipping

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lunetoptics/lunet-backend/internal/order"
)

// Result is the per-order outcome of a bulk AWB run.
type Result struct {
	OrderID   int64  `json:"order_id"`
	Success   bool   `json:"success"`
	AWBNumber string `json:"awb_number,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Service struct {
	carrier Carrier
	orders  order.Repository
}

func NewService(carrier Carrier, orders order.Repository) *Service {
	return &Service{carrier: carrier, orders: orders}
}

// GenerateAWBs creates one waybill per selected order. Failures are captured
// per order; the batch always runs to completion.
func (s *Service) GenerateAWBs(ctx context.Context, orderIDs []int64, courierService string) []Result {
	results := make([]Result, 0, len(orderIDs))
	for _, id := range orderIDs {
		results = append(results, s.generateOne(ctx, id, courierService))
	}
	return results
}

func (s *Service) generateOne(ctx context.Context, id int64, courierService string) Result {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return Result{OrderID: id, Error: err.Error()}
	}

	cod := decimal.Zero
	if o.PaymentMethod == order.PaymentRamburs {
		cod = o.TotalAmount
	}

	awb, err := s.carrier.CreateAWB(ctx, &AWBRequest{
		CourierService: courierService,
		RecipientName:  o.CustomerName,
		RecipientPhone: o.CustomerPhone,
		County:         o.ShippingCounty,
		City:           o.ShippingCity,
		Address:        o.ShippingAddress,
		CashOnDelivery: cod,
		Reference:      orderReference(id),
	})
	if err != nil {
		log.Error().Err(err).Int64("order_id", id).Msg("shipping: failed to create AWB")
		return Result{OrderID: id, Error: err.Error()}
	}

	if err := s.orders.SetAWB(ctx, id, awb, courierService); err != nil {
		log.Error().Err(err).Int64("order_id", id).Msg("shipping: failed to persist AWB number")
		return Result{OrderID: id, Error: err.Error()}
	}

	log.Info().Int64("order_id", id).Str("awb", awb).Msg("shipping: AWB generated")
	return Result{OrderID: id, Success: true, AWBNumber: awb}
}

func orderReference(id int64) string {
	return "LNT-" + strconv.FormatInt(id, 10)
}
