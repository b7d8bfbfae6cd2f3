package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) (int64, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, name, description, category, price, original_price,
	stock_quantity, status, image, gallery, details, colors, created_at, updated_at`

// gallery, details and colors live in jsonb columns; they are decoded to
// typed slices here and nowhere else.
func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p                        Product
		gallery, details, colors []byte
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Price,
		&p.OriginalPrice,
		&p.StockQuantity,
		&p.Status,
		&p.Image,
		&gallery,
		&details,
		&colors,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(gallery, &p.Gallery); err != nil {
		return nil, fmt.Errorf("failed to decode gallery: %w", err)
	}
	if err := json.Unmarshal(details, &p.Details); err != nil {
		return nil, fmt.Errorf("failed to decode details: %w", err)
	}
	if err := json.Unmarshal(colors, &p.Colors); err != nil {
		return nil, fmt.Errorf("failed to decode colors: %w", err)
	}
	return &p, nil
}

func encodeList(v []string) ([]byte, error) {
	if v == nil {
		v = []string{}
	}
	return json.Marshal(v)
}

func (r *postgresRepository) List(ctx context.Context) ([]Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY id`, productColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}
	return products, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) (int64, error) {
	gallery, err := encodeList(p.Gallery)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to encode gallery: %w", err)
	}
	details, err := encodeList(p.Details)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to encode details: %w", err)
	}
	colors, err := encodeList(p.Colors)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to encode colors: %w", err)
	}

	query := `
		INSERT INTO products
			(name, description, category, price, original_price, stock_quantity, status, image, gallery, details, colors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		p.Name,
		p.Description,
		p.Category,
		p.Price,
		p.OriginalPrice,
		p.StockQuantity,
		p.Status,
		p.Image,
		gallery,
		details,
		colors,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert product: %w", err)
	}
	return p.ID, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Product) error {
	gallery, err := encodeList(p.Gallery)
	if err != nil {
		return fmt.Errorf("repository: failed to encode gallery: %w", err)
	}
	details, err := encodeList(p.Details)
	if err != nil {
		return fmt.Errorf("repository: failed to encode details: %w", err)
	}
	colors, err := encodeList(p.Colors)
	if err != nil {
		return fmt.Errorf("repository: failed to encode colors: %w", err)
	}

	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, price = $4, original_price = $5,
			stock_quantity = $6, status = $7, image = $8, gallery = $9, details = $10,
			colors = $11, updated_at = now()
		WHERE id = $12
	`
	tag, err := r.db.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Category,
		p.Price,
		p.OriginalPrice,
		p.StockQuantity,
		p.Status,
		p.Image,
		gallery,
		details,
		colors,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
