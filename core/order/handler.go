package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/core/cart"
	"github.com/vietcloud/vpshop/core/claims"
	"github.com/vietcloud/vpshop/database"
	"github.com/vietcloud/vpshop/validate"
)

// Checkout snapshots the user's cart into a pending order. The cart
// itself survives until the payment is confirmed.
func Checkout(ctx context.Context, db *sqlx.DB, userID string, osTemplates map[string]string) (Order, error) {
	c, err := cart.Fetch(ctx, db, userID)
	if err != nil {
		return Order{}, fmt.Errorf("fetching cart: %w", err)
	}

	if len(c.Items) == 0 {
		err := errors.New("no items to checkout")
		return Order{}, weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
	}

	now := time.Now().UTC()
	ord := Order{
		ID:        validate.GenerateID(),
		UserID:    userID,
		Status:    Pending,
		Subtotal:  c.Subtotal,
		VAT:       c.VAT,
		Total:     c.Total,
		Currency:  "VND",
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = database.Transaction(db, func(tx sqlx.ExtContext) error {
		if err := Create(ctx, tx, ord); err != nil {
			return err
		}

		for _, ci := range c.Items {
			it := Item{
				ID:           validate.GenerateID(),
				OrderID:      ord.ID,
				ProductID:    ci.ProductID,
				ProductName:  ci.ProductName,
				Quantity:     ci.Quantity,
				BillingCycle: ci.BillingCycle,
				UnitPrice:    ci.UnitPrice,
				TotalPrice:   ci.TotalPrice,
				Config:       ci.Config,
				CreatedAt:    now,
			}
			if tpl, ok := osTemplates[ci.ID]; ok {
				tpl := tpl
				it.OSTemplateID = &tpl
			}

			if err := CreateItem(ctx, tx, it); err != nil {
				return err
			}

			ord.Items = append(ord.Items, it)
		}

		return nil
	})
	if err != nil {
		return Order{}, fmt.Errorf("creating order for user[%s]: %w", userID, err)
	}

	return ord, nil
}

// Fulfill marks a pending order paid and flushes the owner's cart in
// one transaction. It is idempotent: a stale confirmation for an
// already-paid order is a no-op.
func Fulfill(ctx context.Context, db *sqlx.DB, orderID string) error {
	ord, err := Fetch(ctx, db, orderID)
	if err != nil {
		return fmt.Errorf("fetching order[%s]: %w", orderID, err)
	}

	if ord.Status != Pending {
		return nil
	}

	err = database.Transaction(db, func(tx sqlx.ExtContext) error {
		up := StatusUp{
			ID:        ord.ID,
			Status:    Paid,
			UpdatedAt: time.Now().UTC(),
		}
		if err := UpdateStatus(ctx, tx, up); err != nil {
			return err
		}

		if err := cart.Delete(ctx, tx, ord.UserID); err != nil {
			return fmt.Errorf("flushing cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("fulfilling order[%s]: %w", orderID, err)
	}

	return nil
}

func HandleCheckout(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in struct {
			// Cart item id -> OS template id, selected per line.
			OSTemplates map[string]string `json:"osTemplates"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		for _, tpl := range in.OSTemplates {
			if err := validate.CheckID(tpl); err != nil {
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}
		}

		ord, err := Checkout(ctx, db, clm.UserID, in.OSTemplates)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ord, http.StatusCreated)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		ords, err := FetchByUser(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ords, http.StatusOK)
	}
}

// fetchOwned loads an order and rejects access by anyone but its owner
// or an admin.
func fetchOwned(ctx context.Context, db *sqlx.DB, id string) (Order, error) {
	if err := validate.CheckID(id); err != nil {
		return Order{}, weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
	}

	ord, err := Fetch(ctx, db, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, weberr.NotFound(err)
		}
		return Order{}, err
	}

	if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, ord.UserID) {
		return Order{}, weberr.NotFound(errors.New("order does not belong to requester"))
	}

	return ord, nil
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ord, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

func HandleInvoice(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ord, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		inv := Invoice{
			OrderID:  ord.ID,
			IssuedAt: ord.CreatedAt,
			Status:   ord.Status,
			Currency: ord.Currency,
			Subtotal: ord.Subtotal,
			VAT:      ord.VAT,
			Total:    ord.Total,
		}
		for _, it := range ord.Items {
			inv.Lines = append(inv.Lines, Line{
				Description:  it.ProductName,
				Quantity:     it.Quantity,
				BillingCycle: it.BillingCycle,
				UnitPrice:    it.UnitPrice,
				TotalPrice:   it.TotalPrice,
			})
		}

		return web.Respond(ctx, w, inv, http.StatusOK)
	}
}

func HandleListAll(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ords, err := FetchAll(ctx, db)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ords, http.StatusOK)
	}
}

func HandleUpdateStatus(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var in struct {
			Status Status `json:"status" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		ord, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !CanTransition(ord.Status, in.Status) {
			err := fmt.Errorf("cannot move order from %s to %s", ord.Status, in.Status)
			return weberr.Conflict(err)
		}

		up := StatusUp{
			ID:        ord.ID,
			Status:    in.Status,
			UpdatedAt: time.Now().UTC(),
		}
		if err := UpdateStatus(ctx, db, up); err != nil {
			return err
		}

		ord.Status = in.Status
		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}
