package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCodeNotFound = errors.New("discount code not found")
	ErrExhausted    = errors.New("discount code usage limit reached")
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Code, error)
	List(ctx context.Context) ([]Code, error)
	Create(ctx context.Context, c *Code) (int64, error)
	Update(ctx context.Context, c *Code) error
	Delete(ctx context.Context, id int64) error
	Redeem(ctx context.Context, code string) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const codeColumns = `id, code, discount_type, discount_value, min_order_amount,
	max_uses, used_count, valid_from, valid_until, is_active, created_at`

func scanCode(row pgx.Row) (*Code, error) {
	var c Code
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinOrderAmount,
		&c.MaxUses,
		&c.UsedCount,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.IsActive,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) GetByCode(ctx context.Context, code string) (*Code, error) {
	query := fmt.Sprintf(`SELECT %s FROM discount_codes WHERE code = $1`, codeColumns)

	c, err := scanCode(r.db.QueryRow(ctx, query, strings.ToUpper(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("repository: failed to select discount code: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Code, error) {
	query := fmt.Sprintf(`SELECT %s FROM discount_codes ORDER BY created_at DESC`, codeColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query discount codes: %w", err)
	}
	defer rows.Close()

	codes := make([]Code, 0)
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan discount code: %w", err)
		}
		codes = append(codes, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating discount codes: %w", err)
	}
	return codes, nil
}

func (r *postgresRepository) Create(ctx context.Context, c *Code) (int64, error) {
	query := `
		INSERT INTO discount_codes
			(code, discount_type, discount_value, min_order_amount, max_uses, valid_from, valid_until, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		strings.ToUpper(c.Code),
		c.DiscountType,
		c.DiscountValue,
		c.MinOrderAmount,
		c.MaxUses,
		c.ValidFrom,
		c.ValidUntil,
		c.IsActive,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert discount code: %w", err)
	}
	c.Code = strings.ToUpper(c.Code)
	return c.ID, nil
}

func (r *postgresRepository) Update(ctx context.Context, c *Code) error {
	query := `
		UPDATE discount_codes
		SET code = $1, discount_type = $2, discount_value = $3, min_order_amount = $4,
			max_uses = $5, valid_from = $6, valid_until = $7, is_active = $8
		WHERE id = $9
	`
	tag, err := r.db.Exec(ctx, query,
		strings.ToUpper(c.Code),
		c.DiscountType,
		c.DiscountValue,
		c.MinOrderAmount,
		c.MaxUses,
		c.ValidFrom,
		c.ValidUntil,
		c.IsActive,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update discount code %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCodeNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM discount_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete discount code %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCodeNotFound
	}
	return nil
}

// Redeem increments used_count once, guarded against racing past max_uses.
// Zero affected rows means the code no longer qualifies: gone, deactivated,
// or exhausted by a concurrent redemption.
func (r *postgresRepository) Redeem(ctx context.Context, code string) error {
	query := `
		UPDATE discount_codes
		SET used_count = used_count + 1
		WHERE code = $1
		  AND is_active
		  AND (max_uses IS NULL OR used_count < max_uses)
	`
	tag, err := r.db.Exec(ctx, query, strings.ToUpper(code))
	if err != nil {
		return fmt.Errorf("repository: failed to redeem discount code %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExhausted
	}
	return nil
}
