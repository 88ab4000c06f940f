package repository

import (
	"context"
	"fmt"

	"github.com/flicky/storefront-api/internal/model"
)

type CartRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error)
	// AddOrIncrement inserts the (user, product) row or adds quantity to it.
	AddOrIncrement(ctx context.Context, item *model.CartItem) error
	DeleteForUser(ctx context.Context, id, userID int64) error
	ClearForUser(ctx context.Context, userID int64) (int64, error)
}

type pgCartRepo struct{ db DBTX }

func (r *pgCartRepo) ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
		        p.id, p.name, COALESCE(p.description, ''), p.price, COALESCE(p.image_url, ''),
		        COALESCE(p.category, ''), p.stock_quantity, p.is_active, p.created_at
		 FROM cart_items ci JOIN products p ON p.id = ci.product_id
		 WHERE ci.user_id = $1 ORDER BY ci.id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		p := &model.Product{}
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.StockQuantity, &p.IsActive, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Product = p
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgCartRepo) AddOrIncrement(ctx context.Context, item *model.CartItem) error {
	query := `INSERT INTO cart_items (user_id, product_id, quantity, created_at)
			  VALUES ($1, $2, $3, NOW())
			  ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			  RETURNING id, quantity, created_at`
	err := r.db.QueryRow(ctx, query, item.UserID, item.ProductID, item.Quantity).
		Scan(&item.ID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %d", ErrUnknownProduct, item.ProductID)
		}
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) DeleteForUser(ctx context.Context, id, userID int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgCartRepo) ClearForUser(ctx context.Context, userID int64) (int64, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return ct.RowsAffected(), nil
}
