package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flicky/storefront-api/internal/model"
)

type OrderRepository interface {
	// Create inserts the order and its items. Callers run it inside InTx.
	Create(ctx context.Context, order *model.Order) error
	GetForUser(ctx context.Context, id, userID int64) (*model.Order, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*model.Order, error)
	GetByPaymentIntentForUser(ctx context.Context, intentID string, userID int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	AttachPaymentIntent(ctx context.Context, id int64, intentID, customerID string) error
	// UpdatePaymentState moves the order from `from` to `to` only if its
	// current state still equals `from`; otherwise it returns ErrStaleOrder.
	// A non-empty intentID replaces the stored payment intent id.
	UpdatePaymentState(ctx context.Context, id int64, from, to model.PaymentState, intentID string) error
}

type pgOrderRepo struct{ db DBTX }

const orderColumns = `id, user_id, total_amount, shipping_address, status, payment_status,
	COALESCE(payment_intent_id, ''), COALESCE(payment_customer_id, ''), created_at, updated_at`

func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO orders (user_id, total_amount, shipping_address, status, payment_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		order.UserID, order.TotalAmount, order.ShippingAddress, order.Status, order.PaymentStatus,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		err = r.db.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			order.ID, order.Items[i].ProductID, order.Items[i].Quantity, order.Items[i].Price,
		).Scan(&order.Items[i].ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: %d", ErrUnknownProduct, order.Items[i].ProductID)
			}
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *pgOrderRepo) GetForUser(ctx context.Context, id, userID int64) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *pgOrderRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`, intentID)
}

func (r *pgOrderRepo) GetByPaymentIntentForUser(ctx context.Context, intentID string, userID int64) (*model.Order, error) {
	return r.getOne(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1 AND user_id = $2`, intentID, userID)
}

func (r *pgOrderRepo) getOne(ctx context.Context, query string, args ...any) (*model.Order, error) {
	order := &model.Order{}
	err := scanOrder(r.db.QueryRow(ctx, query, args...), order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := r.items(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *pgOrderRepo) items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT oi.id, oi.product_id, oi.quantity, oi.price,
		        p.id, p.name, COALESCE(p.description, ''), p.price, COALESCE(p.image_url, ''),
		        COALESCE(p.category, ''), p.stock_quantity, p.is_active, p.created_at
		 FROM order_items oi JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1 ORDER BY oi.id`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		p := &model.Product{}
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.Quantity, &item.Price,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.StockQuantity, &p.IsActive, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.OrderID = orderID
		item.Product = p
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgOrderRepo) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	for i := range orders {
		items, err := r.items(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *pgOrderRepo) AttachPaymentIntent(ctx context.Context, id int64, intentID, customerID string) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE orders SET payment_intent_id = $2, payment_customer_id = NULLIF($3, ''), updated_at = NOW()
		 WHERE id = $1`, id, intentID, customerID,
	)
	if err != nil {
		return fmt.Errorf("attach payment intent: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgOrderRepo) UpdatePaymentState(ctx context.Context, id int64, from, to model.PaymentState, intentID string) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE orders
		 SET status = $4, payment_status = $5,
		     payment_intent_id = COALESCE(NULLIF($6, ''), payment_intent_id), updated_at = NOW()
		 WHERE id = $1 AND status = $2 AND payment_status = $3`,
		id, from.Status, from.Payment, to.Status, to.Payment, intentID,
	)
	if err != nil {
		return fmt.Errorf("update payment state: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrStaleOrder
	}
	return nil
}

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.ShippingAddress, &o.Status, &o.PaymentStatus,
		&o.PaymentIntentID, &o.PaymentCustomerID, &o.CreatedAt, &o.UpdatedAt,
	)
}
