package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"threadmart/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access. Orders are
// immutable snapshots; there is no update path here, only creation and reads.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, items, shipping_info, payment_info, subtotal, shipping, tax, total, status, created_at, updated_at`

// Create inserts a new order using parameterized queries
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	shipping, err := json.Marshal(order.ShippingInfo)
	if err != nil {
		return fmt.Errorf("failed to encode shipping info: %w", err)
	}
	payment, err := json.Marshal(order.PaymentInfo)
	if err != nil {
		return fmt.Errorf("failed to encode payment info: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, items, shipping_info, payment_info, subtotal, shipping, tax, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		items,
		shipping,
		payment,
		order.Subtotal,
		order.Shipping,
		order.Tax,
		order.Total,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create order: %w", describeStoreError(err))
	}

	return nil
}

// FindByID retrieves an order by ID using parameterized queries
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	return order, nil
}

// FindByUserID retrieves all orders for a user, newest first
func (r *orderRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, orderColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var items, shipping, payment []byte

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&items,
		&shipping,
		&payment,
		&order.Subtotal,
		&order.Shipping,
		&order.Tax,
		&order.Total,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	if err := json.Unmarshal(shipping, &order.ShippingInfo); err != nil {
		return nil, fmt.Errorf("failed to decode shipping info: %w", err)
	}
	if err := json.Unmarshal(payment, &order.PaymentInfo); err != nil {
		return nil, fmt.Errorf("failed to decode payment info: %w", err)
	}

	return order, nil
}
