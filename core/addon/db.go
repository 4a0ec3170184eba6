package addon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("addon not found")

func Create(ctx context.Context, db sqlx.ExtContext, a Addon) error {
	const q = `
	INSERT INTO addons
		(addon_id, addon_type, name, unit, unit_price, max_quantity, active, created_at, updated_at)
	VALUES
		(:addon_id, :addon_type, :name, :unit, :unit_price, :max_quantity, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, a); err != nil {
		return fmt.Errorf("inserting addon: %w", err)
	}

	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, a Addon) error {
	const q = `
	UPDATE addons SET
		name = :name,
		unit = :unit,
		unit_price = :unit_price,
		max_quantity = :max_quantity,
		active = :active,
		updated_at = :updated_at
	WHERE addon_id = :addon_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, a); err != nil {
		return fmt.Errorf("updating addon[%s]: %w", a.ID, err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Addon, error) {
	const q = `SELECT * FROM addons WHERE addon_id = $1`

	var a Addon
	if err := sqlx.GetContext(ctx, db, &a, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Addon{}, ErrNotFound
		}
		return Addon{}, fmt.Errorf("selecting addon[%s]: %w", id, err)
	}

	return a, nil
}

func FetchByType(ctx context.Context, db sqlx.ExtContext, addonType string) (Addon, error) {
	const q = `SELECT * FROM addons WHERE addon_type = $1 AND active`

	var a Addon
	if err := sqlx.GetContext(ctx, db, &a, q, addonType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Addon{}, ErrNotFound
		}
		return Addon{}, fmt.Errorf("selecting addon by type[%s]: %w", addonType, err)
	}

	return a, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext, onlyActive bool) ([]Addon, error) {
	q := `SELECT * FROM addons ORDER BY addon_type`
	if onlyActive {
		q = `SELECT * FROM addons WHERE active ORDER BY addon_type`
	}

	as := []Addon{}
	if err := sqlx.SelectContext(ctx, db, &as, q); err != nil {
		return nil, fmt.Errorf("selecting addons: %w", err)
	}

	return as, nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM addons WHERE addon_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting addon[%s]: %w", id, err)
	}

	return nil
}
