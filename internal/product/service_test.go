package product_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lunetoptics/lunet-backend/internal/product"
)

type mockRepository struct {
	createFunc func(ctx context.Context, p *product.Product) (int64, error)
	updateFunc func(ctx context.Context, p *product.Product) error
}

func (m *mockRepository) List(ctx context.Context) ([]product.Product, error) { return nil, nil }
func (m *mockRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return nil, product.ErrNotFound
}
func (m *mockRepository) Create(ctx context.Context, p *product.Product) (int64, error) {
	return m.createFunc(ctx, p)
}
func (m *mockRepository) Update(ctx context.Context, p *product.Product) error {
	return m.updateFunc(ctx, p)
}
func (m *mockRepository) Delete(ctx context.Context, id int64) error { return nil }

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, product.StatusActive, product.DeriveStatus(1))
	assert.Equal(t, product.StatusActive, product.DeriveStatus(100))
	assert.Equal(t, product.StatusOutOfStock, product.DeriveStatus(0))
	assert.Equal(t, product.StatusOutOfStock, product.DeriveStatus(-1))
}

func TestService_CreateDerivesStatus(t *testing.T) {
	tests := []struct {
		name       string
		stock      int
		wantStatus product.Status
	}{
		{"in_stock", 3, product.StatusActive},
		{"zero_stock", 0, product.StatusOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *product.Product
			repo := &mockRepository{
				createFunc: func(ctx context.Context, p *product.Product) (int64, error) {
					captured = p
					return 1, nil
				},
			}
			svc := product.NewService(repo)

			_, err := svc.Create(context.Background(), &product.Product{
				Name:          "Aviator",
				Price:         decimal.NewFromInt(199),
				StockQuantity: tt.stock,
				// A client-supplied status must be overwritten.
				Status: product.Status("whatever"),
			})
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, captured.Status)
		})
	}
}

func TestService_UpdateDerivesStatus(t *testing.T) {
	var captured *product.Product
	repo := &mockRepository{
		updateFunc: func(ctx context.Context, p *product.Product) error {
			captured = p
			return nil
		},
	}
	svc := product.NewService(repo)

	err := svc.Update(context.Background(), &product.Product{
		ID:            1,
		Name:          "Aviator",
		Price:         decimal.NewFromInt(199),
		StockQuantity: 0,
		Status:        product.StatusActive,
	})
	assert.NoError(t, err)
	assert.Equal(t, product.StatusOutOfStock, captured.Status)
}

func TestService_CreateValidation(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, p *product.Product) (int64, error) { return 1, nil },
	}
	svc := product.NewService(repo)

	_, err := svc.Create(context.Background(), &product.Product{Name: "  "})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), &product.Product{
		Name:  "Aviator",
		Price: decimal.NewFromInt(-1),
	})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), &product.Product{
		Name:          "Aviator",
		Price:         decimal.NewFromInt(10),
		StockQuantity: -2,
	})
	assert.Error(t, err)
}
