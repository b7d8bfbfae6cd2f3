package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lunetoptics/lunet-backend/internal/discount"
	"github.com/lunetoptics/lunet-backend/internal/order"
)

type mockRepository struct {
	createFunc  func(ctx context.Context, o *order.Order) (int64, error)
	createCalls int
}

func (m *mockRepository) Create(ctx context.Context, o *order.Order) (int64, error) {
	m.createCalls++
	if m.createFunc != nil {
		return m.createFunc(ctx, o)
	}
	o.ID = int64(m.createCalls)
	return o.ID, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (m *mockRepository) GetByIDs(ctx context.Context, ids []int64) ([]order.Order, error) {
	return nil, nil
}
func (m *mockRepository) List(ctx context.Context) ([]order.Order, error) { return nil, nil }
func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return nil
}
func (m *mockRepository) SetInvoice(ctx context.Context, id int64, invoiceID, invoiceNumber string) error {
	return nil
}
func (m *mockRepository) SetAWB(ctx context.Context, id int64, awbNumber, courier string) error {
	return nil
}
func (m *mockRepository) Delete(ctx context.Context, id int64) error { return nil }

type mockDiscountService struct {
	validateFunc func(ctx context.Context, code string, subtotal decimal.Decimal) (*discount.Validation, error)
	redeemFunc   func(ctx context.Context, code string) error
	redeemCalls  int
}

func (m *mockDiscountService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*discount.Validation, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, code, subtotal)
	}
	return &discount.Validation{Valid: true, Code: code}, nil
}

func (m *mockDiscountService) Redeem(ctx context.Context, code string) error {
	m.redeemCalls++
	if m.redeemFunc != nil {
		return m.redeemFunc(ctx, code)
	}
	return nil
}

func (m *mockDiscountService) List(ctx context.Context) ([]discount.Code, error) { return nil, nil }
func (m *mockDiscountService) Create(ctx context.Context, c *discount.Code) (int64, error) {
	return 0, nil
}
func (m *mockDiscountService) Update(ctx context.Context, c *discount.Code) error { return nil }
func (m *mockDiscountService) Delete(ctx context.Context, id int64) error         { return nil }

type mockNotifier struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{done: make(chan struct{}, 1)}
}

func (m *mockNotifier) SendOrderEmails(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	select {
	case m.done <- struct{}{}:
	default:
	}
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func validRequest() *order.CashOnDeliveryRequest {
	return &order.CashOnDeliveryRequest{
		CustomerName:   "Ion Popescu",
		CustomerEmail:  "ion@example.com",
		CustomerPhone:  "0722123456",
		County:         "Cluj",
		City:           "Cluj-Napoca",
		Address:        "Str. Horea 12",
		ShippingMethod: "courier",
		Items: []order.Item{
			{Name: "Wayfarer", Quantity: 2, UnitPrice: dec("100")},
		},
	}
}

func TestService_CreateCashOnDelivery(t *testing.T) {
	t.Run("computes_and_freezes_totals", func(t *testing.T) {
		repo := &mockRepository{}
		svc := order.NewService(repo, &mockDiscountService{}, nil)

		o, err := svc.CreateCashOnDelivery(context.Background(), validRequest())
		assert.NoError(t, err)
		assert.True(t, o.Subtotal.Equal(dec("200")))
		assert.True(t, o.ShippingCost.Equal(dec("25")))
		assert.True(t, o.TotalAmount.Equal(dec("225")))
		assert.Equal(t, order.PaymentRamburs, o.PaymentMethod)
		assert.Equal(t, order.StatusPending, o.Status)
		assert.True(t, o.TotalAmount.Equal(o.Subtotal.Add(o.ShippingCost).Sub(o.DiscountAmount)))
	})

	t.Run("applies_valid_discount_and_redeems_once", func(t *testing.T) {
		repo := &mockRepository{}
		discounts := &mockDiscountService{
			validateFunc: func(ctx context.Context, code string, subtotal decimal.Decimal) (*discount.Validation, error) {
				return &discount.Validation{Valid: true, Code: "SAVE10", DiscountAmount: dec("20")}, nil
			},
		}
		svc := order.NewService(repo, discounts, nil)

		req := validRequest()
		req.DiscountCode = "save10"
		o, err := svc.CreateCashOnDelivery(context.Background(), req)
		assert.NoError(t, err)
		assert.True(t, o.DiscountAmount.Equal(dec("20")))
		assert.True(t, o.TotalAmount.Equal(dec("205")))
		assert.Equal(t, "SAVE10", o.DiscountCode)
		assert.Equal(t, 1, discounts.redeemCalls)
	})

	t.Run("rejects_invalid_discount_without_insert", func(t *testing.T) {
		repo := &mockRepository{}
		discounts := &mockDiscountService{
			validateFunc: func(ctx context.Context, code string, subtotal decimal.Decimal) (*discount.Validation, error) {
				return &discount.Validation{Valid: false, Message: "Codul de reducere a expirat"}, nil
			},
		}
		svc := order.NewService(repo, discounts, nil)

		req := validRequest()
		req.DiscountCode = "OLD"
		_, err := svc.CreateCashOnDelivery(context.Background(), req)
		assert.ErrorIs(t, err, order.ErrValidation)
		assert.Zero(t, repo.createCalls)
		assert.Zero(t, discounts.redeemCalls)
	})

	t.Run("missing_phone_fails_and_persists_nothing", func(t *testing.T) {
		repo := &mockRepository{}
		svc := order.NewService(repo, &mockDiscountService{}, nil)

		req := validRequest()
		req.CustomerPhone = ""
		_, err := svc.CreateCashOnDelivery(context.Background(), req)
		assert.ErrorIs(t, err, order.ErrValidation)
		assert.Zero(t, repo.createCalls)
	})

	t.Run("empty_cart_fails", func(t *testing.T) {
		svc := order.NewService(&mockRepository{}, &mockDiscountService{}, nil)

		req := validRequest()
		req.Items = nil
		_, err := svc.CreateCashOnDelivery(context.Background(), req)
		assert.ErrorIs(t, err, order.ErrValidation)
	})

	t.Run("repository_failure_surfaces", func(t *testing.T) {
		repo := &mockRepository{
			createFunc: func(ctx context.Context, o *order.Order) (int64, error) {
				return 0, errors.New("connection refused")
			},
		}
		svc := order.NewService(repo, &mockDiscountService{}, nil)

		_, err := svc.CreateCashOnDelivery(context.Background(), validRequest())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, order.ErrValidation)
	})

	t.Run("failed_redemption_does_not_fail_the_order", func(t *testing.T) {
		discounts := &mockDiscountService{
			validateFunc: func(ctx context.Context, code string, subtotal decimal.Decimal) (*discount.Validation, error) {
				return &discount.Validation{Valid: true, Code: "LAST", DiscountAmount: dec("10")}, nil
			},
			redeemFunc: func(ctx context.Context, code string) error {
				return discount.ErrExhausted
			},
		}
		svc := order.NewService(&mockRepository{}, discounts, nil)

		req := validRequest()
		req.DiscountCode = "LAST"
		o, err := svc.CreateCashOnDelivery(context.Background(), req)
		assert.NoError(t, err)
		assert.NotZero(t, o.ID)
	})

	t.Run("emails_dispatched_best_effort", func(t *testing.T) {
		notifier := newMockNotifier()
		svc := order.NewService(&mockRepository{}, &mockDiscountService{}, notifier)

		_, err := svc.CreateCashOnDelivery(context.Background(), validRequest())
		assert.NoError(t, err)
		<-notifier.done

		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		assert.Equal(t, 1, notifier.calls)
	})
}
