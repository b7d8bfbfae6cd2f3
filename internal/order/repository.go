package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateSession signals a webhook redelivery: an order for this
	// checkout session already exists.
	ErrDuplicateSession = errors.New("order for this checkout session already exists")
)

type Repository interface {
	Create(ctx context.Context, o *Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	SetInvoice(ctx context.Context, id int64, invoiceID, invoiceNumber string) error
	SetAWB(ctx context.Context, id int64, awbNumber, courier string) error
	Delete(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `id, customer_name, customer_email, customer_phone,
	shipping_county, shipping_city, shipping_address, shipping_address_json,
	items, subtotal, shipping_method, shipping_cost, discount_code,
	discount_amount, total_amount, payment_method, status, stripe_session_id,
	oblio_invoice_id, oblio_invoice_number, awb_number, awb_courier, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o            Order
		addressJSON  []byte
		items        []byte
		discountCode *string
		sessionID    *string
		invoiceID    *string
		invoiceNo    *string
		awbNumber    *string
		awbCourier   *string
	)
	err := row.Scan(
		&o.ID,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.CustomerPhone,
		&o.ShippingCounty,
		&o.ShippingCity,
		&o.ShippingAddress,
		&addressJSON,
		&items,
		&o.Subtotal,
		&o.ShippingMethod,
		&o.ShippingCost,
		&discountCode,
		&o.DiscountAmount,
		&o.TotalAmount,
		&o.PaymentMethod,
		&o.Status,
		&sessionID,
		&invoiceID,
		&invoiceNo,
		&awbNumber,
		&awbCourier,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	if addressJSON != nil {
		var addr CollectedAddress
		if err := json.Unmarshal(addressJSON, &addr); err != nil {
			return nil, fmt.Errorf("failed to decode collected address: %w", err)
		}
		o.CollectedAddress = &addr
	}
	o.DiscountCode = deref(discountCode)
	o.StripeSessionID = deref(sessionID)
	o.OblioInvoiceID = deref(invoiceID)
	o.OblioInvoiceNo = deref(invoiceNo)
	o.AwbNumber = deref(awbNumber)
	o.AwbCourier = deref(awbCourier)
	return &o, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) (int64, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to encode order items: %w", err)
	}
	var addressJSON []byte
	if o.CollectedAddress != nil {
		addressJSON, err = json.Marshal(o.CollectedAddress)
		if err != nil {
			return 0, fmt.Errorf("repository: failed to encode collected address: %w", err)
		}
	}

	query := `
		INSERT INTO orders
			(customer_name, customer_email, customer_phone, shipping_county,
			 shipping_city, shipping_address, shipping_address_json, items,
			 subtotal, shipping_method, shipping_cost, discount_code,
			 discount_amount, total_amount, payment_method, status, stripe_session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at
	`
	err = r.db.QueryRow(ctx, query,
		o.CustomerName,
		o.CustomerEmail,
		o.CustomerPhone,
		o.ShippingCounty,
		o.ShippingCity,
		o.ShippingAddress,
		addressJSON,
		items,
		o.Subtotal,
		o.ShippingMethod,
		o.ShippingCost,
		nullable(o.DiscountCode),
		o.DiscountAmount,
		o.TotalAmount,
		o.PaymentMethod,
		o.Status,
		nullable(o.StripeSessionID),
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateSession
		}
		return 0, fmt.Errorf("repository: failed to insert order: %w", err)
	}
	return o.ID, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order %d: %w", id, err)
	}
	return o, nil
}

func (r *postgresRepository) GetByIDs(ctx context.Context, ids []int64) ([]Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = ANY($1) ORDER BY id`, orderColumns)
	return r.queryOrders(ctx, query, ids)
}

func (r *postgresRepository) List(ctx context.Context) ([]Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC`, orderColumns)
	return r.queryOrders(ctx, query)
}

func (r *postgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}
	return orders, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update order %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) SetInvoice(ctx context.Context, id int64, invoiceID, invoiceNumber string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET oblio_invoice_id = $1, oblio_invoice_number = $2 WHERE id = $3`,
		invoiceID, invoiceNumber, id)
	if err != nil {
		return fmt.Errorf("repository: failed to set invoice on order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) SetAWB(ctx context.Context, id int64, awbNumber, courier string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET awb_number = $1, awb_courier = $2 WHERE id = $3`,
		awbNumber, courier, id)
	if err != nil {
		return fmt.Errorf("repository: failed to set AWB on order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
