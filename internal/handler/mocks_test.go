package handler_test

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lunetoptics/lunet-backend/internal/checkout"
	"github.com/lunetoptics/lunet-backend/internal/discount"
	"github.com/lunetoptics/lunet-backend/internal/order"
	"github.com/lunetoptics/lunet-backend/internal/product"
)

type mockOrderService struct {
	createCODFunc    func(ctx context.Context, req *order.CashOnDeliveryRequest) (*order.Order, error)
	listFunc         func(ctx context.Context) ([]order.Order, error)
	getByIDFunc      func(ctx context.Context, id int64) (*order.Order, error)
	updateStatusFunc func(ctx context.Context, id int64, status string) error
	deleteFunc       func(ctx context.Context, id int64) error
	createCalls      int
}

func (m *mockOrderService) CreateCashOnDelivery(ctx context.Context, req *order.CashOnDeliveryRequest) (*order.Order, error) {
	m.createCalls++
	return m.createCODFunc(ctx, req)
}

func (m *mockOrderService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, order.ErrNotFound
}

func (m *mockOrderService) List(ctx context.Context) ([]order.Order, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockOrderService) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockDiscountService struct {
	validateFunc func(ctx context.Context, code string, subtotal decimal.Decimal) (*discount.Validation, error)
	listFunc     func(ctx context.Context) ([]discount.Code, error)
	createFunc   func(ctx context.Context, c *discount.Code) (int64, error)
	redeemCalls  int
}

func (m *mockDiscountService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*discount.Validation, error) {
	return m.validateFunc(ctx, code, subtotal)
}

func (m *mockDiscountService) Redeem(ctx context.Context, code string) error {
	m.redeemCalls++
	return nil
}

func (m *mockDiscountService) List(ctx context.Context) ([]discount.Code, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockDiscountService) Create(ctx context.Context, c *discount.Code) (int64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	return 1, nil
}

func (m *mockDiscountService) Update(ctx context.Context, c *discount.Code) error { return nil }
func (m *mockDiscountService) Delete(ctx context.Context, id int64) error         { return nil }

type mockCheckoutService struct {
	createSessionFunc func(ctx context.Context, req *checkout.CartRequest) (string, error)
	handleWebhookFunc func(ctx context.Context, payload []byte, signature string) error
}

func (m *mockCheckoutService) CreateSession(ctx context.Context, req *checkout.CartRequest) (string, error) {
	return m.createSessionFunc(ctx, req)
}

func (m *mockCheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.handleWebhookFunc(ctx, payload, signature)
}

type mockProductService struct {
	listFunc    func(ctx context.Context) ([]product.Product, error)
	getByIDFunc func(ctx context.Context, id int64) (*product.Product, error)
}

func (m *mockProductService) List(ctx context.Context) ([]product.Product, error) {
	return m.listFunc(ctx)
}

func (m *mockProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProductService) Create(ctx context.Context, p *product.Product) (int64, error) {
	return 1, nil
}
func (m *mockProductService) Update(ctx context.Context, p *product.Product) error { return nil }
func (m *mockProductService) Delete(ctx context.Context, id int64) error           { return nil }

type mockOrderRepository struct {
	getByIDsFunc func(ctx context.Context, ids []int64) ([]order.Order, error)
	getByIDFunc  func(ctx context.Context, id int64) (*order.Order, error)
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) (int64, error) {
	return 1, nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, order.ErrNotFound
}

func (m *mockOrderRepository) GetByIDs(ctx context.Context, ids []int64) ([]order.Order, error) {
	return m.getByIDsFunc(ctx, ids)
}

func (m *mockOrderRepository) List(ctx context.Context) ([]order.Order, error) { return nil, nil }
func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return nil
}
func (m *mockOrderRepository) SetInvoice(ctx context.Context, id int64, invoiceID, invoiceNumber string) error {
	return nil
}
func (m *mockOrderRepository) SetAWB(ctx context.Context, id int64, awbNumber, courier string) error {
	return nil
}
func (m *mockOrderRepository) Delete(ctx context.Context, id int64) error { return nil }
