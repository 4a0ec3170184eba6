package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vietcloud/vpshop/core/discount"
)

var ErrNotFound = errors.New("product not found")

func Create(ctx context.Context, db sqlx.ExtContext, p Product) error {
	const q = `
	INSERT INTO products
		(product_id, name, description, monthly_price, yearly_price, attributes, active, created_at, updated_at)
	VALUES
		(:product_id, :name, :description, :monthly_price, :yearly_price, :attributes, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, p Product) error {
	const q = `
	UPDATE products SET
		name = :name,
		description = :description,
		monthly_price = :monthly_price,
		yearly_price = :yearly_price,
		attributes = :attributes,
		active = :active,
		updated_at = :updated_at,
		version = version + 1
	WHERE product_id = :product_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("updating product[%s]: %w", p.ID, err)
	}

	return nil
}

// Fetch returns a product with its attached discount, if one is
// currently bound to it.
func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Product, error) {
	const q = `SELECT * FROM products WHERE product_id = $1`

	var p Product
	if err := sqlx.GetContext(ctx, db, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("selecting product[%s]: %w", id, err)
	}

	d, err := discount.FetchByProduct(ctx, db, id)
	switch {
	case err == nil:
		p.Discount = &d
	case errors.Is(err, discount.ErrNotFound):
	default:
		return Product{}, fmt.Errorf("selecting product[%s] discount: %w", id, err)
	}

	return p, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext, onlyActive bool) ([]Product, error) {
	q := `SELECT * FROM products ORDER BY name`
	if onlyActive {
		q = `SELECT * FROM products WHERE active ORDER BY name`
	}

	ps := []Product{}
	if err := sqlx.SelectContext(ctx, db, &ps, q); err != nil {
		return nil, fmt.Errorf("selecting products: %w", err)
	}

	return ps, nil
}

func FetchOSTemplates(ctx context.Context, db sqlx.ExtContext) ([]OSTemplate, error) {
	const q = `SELECT * FROM os_templates WHERE active ORDER BY family, version`

	ts := []OSTemplate{}
	if err := sqlx.SelectContext(ctx, db, &ts, q); err != nil {
		return nil, fmt.Errorf("selecting os templates: %w", err)
	}

	return ts, nil
}
