package instance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("instance not found")

func Create(ctx context.Context, db sqlx.ExtContext, inst Instance) error {
	const q = `
	INSERT INTO instances
		(instance_id, external_vm_id, user_id, order_item_id, name, status, vnc_port, created_at, updated_at)
	VALUES
		(:instance_id, :external_vm_id, :user_id, :order_item_id, :name, :status, :vnc_port, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, inst); err != nil {
		return fmt.Errorf("inserting instance: %w", err)
	}

	return nil
}

func UpdateStatus(ctx context.Context, db sqlx.ExtContext, up StatusUp) error {
	const q = `
	UPDATE instances SET
		status = :status,
		vnc_port = :vnc_port,
		updated_at = :updated_at
	WHERE instance_id = :instance_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, up); err != nil {
		return fmt.Errorf("updating instance[%s] status: %w", up.ID, err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Instance, error) {
	const q = `SELECT * FROM instances WHERE instance_id = $1`

	var inst Instance
	if err := sqlx.GetContext(ctx, db, &inst, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Instance{}, ErrNotFound
		}
		return Instance{}, fmt.Errorf("selecting instance[%s]: %w", id, err)
	}

	return inst, nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Instance, error) {
	const q = `SELECT * FROM instances WHERE user_id = $1 ORDER BY created_at DESC`

	is := []Instance{}
	if err := sqlx.SelectContext(ctx, db, &is, q, userID); err != nil {
		return nil, fmt.Errorf("selecting instances of user[%s]: %w", userID, err)
	}

	return is, nil
}
