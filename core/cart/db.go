package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrItemNotFound = errors.New("cart item not found")

// upsert creates the cart row on first add and bumps its version on
// every later mutation.
func upsert(ctx context.Context, db sqlx.ExtContext, userID string, now time.Time) error {
	const q = `
	INSERT INTO carts (user_id, created_at, updated_at)
	VALUES ($1, $2, $2)
	ON CONFLICT (user_id) DO UPDATE
	SET updated_at = $2, version = carts.version + 1`

	if _, err := db.ExecContext(ctx, q, userID, now); err != nil {
		return fmt.Errorf("upserting cart for user[%s]: %w", userID, err)
	}

	return nil
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	if err := upsert(ctx, db, it.UserID, it.UpdatedAt); err != nil {
		return err
	}

	const q = `
	INSERT INTO cart_items
		(cart_item_id, user_id, product_id, product_name, quantity, billing_cycle, unit_price, total_price, config, created_at, updated_at)
	VALUES
		(:cart_item_id, :user_id, :product_id, :product_name, :quantity, :billing_cycle, :unit_price, :total_price, :config, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		return fmt.Errorf("inserting cart item: %w", err)
	}

	return nil
}

func UpdateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	if err := upsert(ctx, db, it.UserID, it.UpdatedAt); err != nil {
		return err
	}

	const q = `
	UPDATE cart_items SET
		quantity = :quantity,
		total_price = :total_price,
		updated_at = :updated_at
	WHERE cart_item_id = :cart_item_id AND user_id = :user_id`

	res, err := sqlx.NamedExecContext(ctx, db, q, it)
	if err != nil {
		return fmt.Errorf("updating cart item[%s]: %w", it.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}

	return nil
}

func FetchItem(ctx context.Context, db sqlx.ExtContext, userID, itemID string) (Item, error) {
	const q = `SELECT * FROM cart_items WHERE user_id = $1 AND cart_item_id = $2`

	var it Item
	if err := sqlx.GetContext(ctx, db, &it, q, userID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, fmt.Errorf("selecting cart item[%s]: %w", itemID, err)
	}

	return decorate(it), nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, userID string) ([]Item, error) {
	const q = `SELECT * FROM cart_items WHERE user_id = $1 ORDER BY created_at`

	rows := []Item{}
	if err := sqlx.SelectContext(ctx, db, &rows, q, userID); err != nil {
		return nil, fmt.Errorf("selecting cart items for user[%s]: %w", userID, err)
	}

	items := make([]Item, 0, len(rows))
	for _, it := range rows {
		items = append(items, decorate(it))
	}

	return items, nil
}

func DeleteItem(ctx context.Context, db sqlx.ExtContext, userID, itemID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1 AND cart_item_id = $2`

	res, err := db.ExecContext(ctx, q, userID, itemID)
	if err != nil {
		return fmt.Errorf("deleting cart item[%s]: %w", itemID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}

	return nil
}

// Delete clears the whole cart.
func Delete(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const qi = `DELETE FROM cart_items WHERE user_id = $1`
	if _, err := db.ExecContext(ctx, qi, userID); err != nil {
		return fmt.Errorf("deleting cart items for user[%s]: %w", userID, err)
	}

	const qc = `DELETE FROM carts WHERE user_id = $1`
	if _, err := db.ExecContext(ctx, qc, userID); err != nil {
		return fmt.Errorf("deleting cart for user[%s]: %w", userID, err)
	}

	return nil
}

// Fetch assembles the aggregate view of a user's cart.
func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	const q = `SELECT * FROM carts WHERE user_id = $1`

	var c Cart
	err := sqlx.GetContext(ctx, db, &c, q, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		c = Cart{UserID: userID}
	case err != nil:
		return Cart{}, fmt.Errorf("selecting cart for user[%s]: %w", userID, err)
	}

	items, err := FetchItems(ctx, db, userID)
	if err != nil {
		return Cart{}, err
	}

	c.Items = items
	c.Subtotal = Subtotal(items)
	c.VAT = VATTotal(items)
	c.Total = Total(items)
	c.Currency = "VND"

	return c, nil
}
