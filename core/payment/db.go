package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("payment not found")

func Create(ctx context.Context, db sqlx.ExtContext, p Payment) error {
	const q = `
	INSERT INTO payments
		(payment_id, order_id, provider_id, status, amount, qr_code, created_at, updated_at)
	VALUES
		(:payment_id, :order_id, :provider_id, :status, :amount, :qr_code, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}

	return nil
}

// UpdateStatus only moves non-terminal payments, which makes stale
// watcher results harmless.
func UpdateStatus(ctx context.Context, db sqlx.ExtContext, up StatusUp) error {
	const q = `
	UPDATE payments SET
		status = :status,
		updated_at = :updated_at
	WHERE payment_id = :payment_id AND status = 'pending'`

	if _, err := sqlx.NamedExecContext(ctx, db, q, up); err != nil {
		return fmt.Errorf("updating payment[%s] status: %w", up.ID, err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Payment, error) {
	const q = `SELECT * FROM payments WHERE payment_id = $1`

	var p Payment
	if err := sqlx.GetContext(ctx, db, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, fmt.Errorf("selecting payment[%s]: %w", id, err)
	}

	return p, nil
}

func FetchByOrder(ctx context.Context, db sqlx.ExtContext, orderID string) (Payment, error) {
	const q = `SELECT * FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`

	var p Payment
	if err := sqlx.GetContext(ctx, db, &p, q, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, fmt.Errorf("selecting payment of order[%s]: %w", orderID, err)
	}

	return p, nil
}
