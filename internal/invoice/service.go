package invoice

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/lunetoptics/lunet-backend/internal/order"
)

// Result is the per-order outcome of a bulk invoice run.
type Result struct {
	OrderID       int64  `json:"order_id"`
	Success       bool   `json:"success"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Error         string `json:"error,omitempty"`
}

type Service struct {
	client Invoicer
	orders order.Repository
}

func NewService(client Invoicer, orders order.Repository) *Service {
	return &Service{client: client, orders: orders}
}

// SendInvoices issues one invoice per selected order. A failure on one order
// is recorded in its result and never aborts the rest of the batch.
func (s *Service) SendInvoices(ctx context.Context, orderIDs []int64) []Result {
	results := make([]Result, 0, len(orderIDs))
	for _, id := range orderIDs {
		results = append(results, s.sendOne(ctx, id))
	}
	return results
}

func (s *Service) sendOne(ctx context.Context, id int64) Result {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return Result{OrderID: id, Error: err.Error()}
	}

	invoiceID, number, err := s.client.CreateInvoice(ctx, o)
	if err != nil {
		log.Error().Err(err).Int64("order_id", id).Msg("invoice: failed to create invoice")
		return Result{OrderID: id, Error: err.Error()}
	}

	if err := s.orders.SetInvoice(ctx, id, invoiceID, number); err != nil {
		log.Error().Err(err).Int64("order_id", id).Msg("invoice: failed to persist invoice number")
		return Result{OrderID: id, Error: err.Error()}
	}

	log.Info().Int64("order_id", id).Str("invoice", number).Msg("invoice: issued")
	return Result{OrderID: id, Success: true, InvoiceNumber: number}
}
