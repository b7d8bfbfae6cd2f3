package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lunetoptics/lunet-backend/internal/pricing"
)

// Validation is the outcome of checking a code against a cart subtotal.
// Message carries a customer-facing reason when Valid is false.
type Validation struct {
	Valid          bool            `json:"valid"`
	Code           string          `json:"code,omitempty"`
	DiscountAmount decimal.Decimal `json:"-"`
	Message        string          `json:"message,omitempty"`
}

type Service interface {
	// Validate is side-effect free and safe to call repeatedly while the
	// customer edits their cart.
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Validation, error)
	// Redeem consumes one use of the code. Called exactly once per order,
	// at the moment the order is durably created.
	Redeem(ctx context.Context, code string) error

	List(ctx context.Context) ([]Code, error)
	Create(ctx context.Context, c *Code) (int64, error)
	Update(ctx context.Context, c *Code) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Validation, error) {
	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return &Validation{Valid: false, Message: "Codul de reducere nu există"}, nil
		}
		return nil, fmt.Errorf("service: failed to fetch discount code: %w", err)
	}

	now := s.now()
	switch {
	case !c.IsActive:
		return &Validation{Valid: false, Message: "Codul de reducere nu mai este activ"}, nil
	case c.ValidFrom != nil && now.Before(*c.ValidFrom):
		return &Validation{Valid: false, Message: "Codul de reducere nu este încă valabil"}, nil
	case c.ValidUntil != nil && now.After(*c.ValidUntil):
		return &Validation{Valid: false, Message: "Codul de reducere a expirat"}, nil
	case c.MaxUses != nil && c.UsedCount >= *c.MaxUses:
		return &Validation{Valid: false, Message: "Codul de reducere a atins limita de utilizări"}, nil
	case subtotal.LessThan(c.MinOrderAmount):
		return &Validation{
			Valid:   false,
			Message: fmt.Sprintf("Comanda minimă pentru acest cod este %s lei", c.MinOrderAmount.StringFixed(2)),
		}, nil
	}

	return &Validation{
		Valid:          true,
		Code:           c.Code,
		DiscountAmount: pricing.DiscountAmount(c.DiscountType, c.DiscountValue, subtotal),
	}, nil
}

func (s *service) Redeem(ctx context.Context, code string) error {
	return s.repo.Redeem(ctx, code)
}

func (s *service) List(ctx context.Context) ([]Code, error) {
	return s.repo.List(ctx)
}

func (s *service) Create(ctx context.Context, c *Code) (int64, error) {
	if err := validateCodeFields(c); err != nil {
		return 0, err
	}
	return s.repo.Create(ctx, c)
}

func (s *service) Update(ctx context.Context, c *Code) error {
	if err := validateCodeFields(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateCodeFields(c *Code) error {
	if strings.TrimSpace(c.Code) == "" {
		return errors.New("service: code is required")
	}
	if c.DiscountType != pricing.DiscountTypePercentage && c.DiscountType != pricing.DiscountTypeFixed {
		return fmt.Errorf("service: unknown discount type %q", c.DiscountType)
	}
	if c.DiscountValue.IsNegative() {
		return errors.New("service: discount value cannot be negative")
	}
	if c.DiscountType == pricing.DiscountTypePercentage && c.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("service: percentage discount cannot exceed 100")
	}
	return nil
}
