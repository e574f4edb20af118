package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/vinayak-store/internal/model"
)

// CreateOrder сохраняет заказ одной вставкой и возвращает его идентификатор.
// Идентификатор создаётся до первой попытки, поэтому повтор после сбоя не создаёт второй заказ.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o model.Order) (string, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return "", fmt.Errorf("encode shipping: %w", err)
	}

	id := o.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := o.Status
	if status == "" {
		status = model.OrderStatusPending
	}

	err = r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO orders (id, user_id, user_email, items, total, status, shipping, payment_method)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO NOTHING`,
			id, o.UserID, o.UserEmail, string(items), o.Total, string(status), string(shipping), string(o.PaymentMethod),
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	return id, nil
}

const orderColumns = `id, user_id, user_email, items, total, status, shipping, payment_method, created_at`

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o         model.Order
		items     []byte
		shipping  []byte
		status    string
		payment   string
		createdAt time.Time
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.UserEmail, &items, &o.Total, &status, &shipping, &payment, &createdAt); err != nil {
		return model.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return model.Order{}, fmt.Errorf("order %s: decode items: %w", o.ID, err)
	}
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return model.Order{}, fmt.Errorf("order %s: decode shipping: %w", o.ID, err)
	}
	o.Status = model.OrderStatus(status)
	o.PaymentMethod = model.PaymentMethod(payment)
	o.CreatedAt = createdAt
	return o, nil
}

func (r *PostgresRepository) queryOrders(ctx context.Context, sql string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// GetOrder возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// GetOrdersByUser возвращает заказы пользователя, новые первыми.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
}

// ListOrders возвращает все заказы, новые первыми.
func (r *PostgresRepository) ListOrders(ctx context.Context) ([]model.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// UpdateOrderStatus меняет статус заказа.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
