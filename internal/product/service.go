package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Service interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) (int64, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *service) GetByID(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, p *Product) (int64, error) {
	if err := validateProduct(p); err != nil {
		return 0, err
	}
	p.Status = DeriveStatus(p.StockQuantity)
	return s.repo.Create(ctx, p)
}

func (s *service) Update(ctx context.Context, p *Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	p.Status = DeriveStatus(p.StockQuantity)
	return s.repo.Update(ctx, p)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateProduct(p *Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("service: product name is required")
	}
	if p.Price.IsNegative() {
		return errors.New("service: product price cannot be negative")
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("service: stock quantity cannot be negative, got %d", p.StockQuantity)
	}
	return nil
}
