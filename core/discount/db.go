package discount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("discount not found")

func Create(ctx context.Context, db sqlx.ExtContext, d Discount) error {
	const q = `
	INSERT INTO discounts
		(discount_id, code, product_id, discount_percent, starts_at, ends_at, active)
	VALUES
		(:discount_id, :code, :product_id, :discount_percent, :starts_at, :ends_at, :active)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, d); err != nil {
		return fmt.Errorf("inserting discount: %w", err)
	}

	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, d Discount) error {
	const q = `
	UPDATE discounts SET
		code = :code,
		discount_percent = :discount_percent,
		starts_at = :starts_at,
		ends_at = :ends_at,
		active = :active
	WHERE discount_id = :discount_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, d); err != nil {
		return fmt.Errorf("updating discount[%s]: %w", d.ID, err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Discount, error) {
	const q = `SELECT * FROM discounts WHERE discount_id = $1`

	var d Discount
	if err := sqlx.GetContext(ctx, db, &d, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Discount{}, ErrNotFound
		}
		return Discount{}, fmt.Errorf("selecting discount[%s]: %w", id, err)
	}

	return d, nil
}

// FetchByProduct returns the product's active discount whose validity
// window covers now, if any.
func FetchByProduct(ctx context.Context, db sqlx.ExtContext, productID string) (Discount, error) {
	const q = `
	SELECT * FROM discounts
	WHERE product_id = $1 AND active
	  AND now() >= starts_at AND now() < ends_at
	ORDER BY ends_at DESC
	LIMIT 1`

	var d Discount
	if err := sqlx.GetContext(ctx, db, &d, q, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Discount{}, ErrNotFound
		}
		return Discount{}, fmt.Errorf("selecting discount for product[%s]: %w", productID, err)
	}

	return d, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Discount, error) {
	const q = `SELECT * FROM discounts ORDER BY code`

	ds := []Discount{}
	if err := sqlx.SelectContext(ctx, db, &ds, q); err != nil {
		return nil, fmt.Errorf("selecting discounts: %w", err)
	}

	return ds, nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM discounts WHERE discount_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting discount[%s]: %w", id, err)
	}

	return nil
}
