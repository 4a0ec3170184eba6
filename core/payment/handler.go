package payment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/core/claims"
	"github.com/vietcloud/vpshop/core/order"
	"github.com/vietcloud/vpshop/qrpay"
	"github.com/vietcloud/vpshop/validate"
)

// Creator is the slice of the qrpay client the handlers need on top of
// the watcher's Gateway.
type Creator interface {
	Gateway
	CreatePayment(ctx context.Context, req qrpay.PaymentRequest) (qrpay.Payment, error)
	CancelPayment(ctx context.Context, id string) error
}

// gatewayErr prefers the gateway's own message for the user-facing
// response, falling back to a generic one.
func gatewayErr(err error) error {
	var ge *qrpay.Error
	if errors.As(err, &ge) && ge.Message != "" {
		return weberr.NewError(err, ge.Message, http.StatusBadGateway)
	}
	return weberr.NewError(err, "payment gateway is unavailable", http.StatusBadGateway)
}

// fetchOwned loads a payment and checks it belongs to the requester.
func fetchOwned(ctx context.Context, db *sqlx.DB, id string) (Payment, order.Order, error) {
	if err := validate.CheckID(id); err != nil {
		return Payment{}, order.Order{}, weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
	}

	p, err := Fetch(ctx, db, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Payment{}, order.Order{}, weberr.NotFound(err)
		}
		return Payment{}, order.Order{}, err
	}

	ord, err := order.Fetch(ctx, db, p.OrderID)
	if err != nil {
		return Payment{}, order.Order{}, err
	}

	if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, ord.UserID) {
		return Payment{}, order.Order{}, weberr.NotFound(errors.New("payment does not belong to requester"))
	}

	return p, ord, nil
}

// HandleCreate opens a payment intent at the gateway for a pending
// order and starts the confirmation watcher.
func HandleCreate(db *sqlx.DB, gw Creator, accountNo string, w8 *Watcher) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in struct {
			OrderID string `json:"orderId" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		ord, err := order.Fetch(ctx, db, in.OrderID)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if ord.UserID != clm.UserID {
			return weberr.NotFound(errors.New("order does not belong to requester"))
		}

		if ord.Status != order.Pending {
			err := errors.New("order is not awaiting payment")
			return weberr.Conflict(err)
		}

		gp, err := gw.CreatePayment(ctx, qrpay.PaymentRequest{
			Amount:    ord.Total,
			Currency:  ord.Currency,
			AccountNo: accountNo,
			Reference: ord.ID,
		})
		if err != nil {
			return gatewayErr(err)
		}

		now := time.Now().UTC()
		p := Payment{
			ID:         validate.GenerateID(),
			OrderID:    ord.ID,
			ProviderID: gp.ID,
			Status:     Pending,
			Amount:     gp.Amount,
			QRCode:     gp.QRCode,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := Create(ctx, db, p); err != nil {
			return err
		}

		w8.Watch(p.ID, p.ProviderID, p.OrderID)

		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

// HandleShowByOrder returns the latest payment attached to an order,
// which is what the payment page reloads with.
func HandleShowByOrder(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		orderID := web.Param(r, "id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		ord, err := order.Fetch(ctx, db, orderID)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, ord.UserID) {
			return weberr.NotFound(errors.New("order does not belong to requester"))
		}

		p, err := FetchByOrder(ctx, db, orderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleStatus(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		p, _, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

// HandleCheck forces a gateway round-trip instead of waiting for the
// next watcher tick. The storefront calls it from the "I have paid"
// button.
func HandleCheck(db *sqlx.DB, gw Creator, w8 *Watcher) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		p, _, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if p.Status.Terminal() {
			return web.Respond(ctx, w, p, http.StatusOK)
		}

		gp, err := gw.GetPayment(ctx, p.ProviderID)
		if err != nil {
			return gatewayErr(err)
		}

		if gp.Status.Terminal() {
			st := statusOf(gp.Status)
			if err := w8.settle(ctx, p.ID, p.OrderID, st); err != nil {
				return err
			}
			p.Status = st
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

// HandleDelete cancels an open payment. The gateway call is best
// effort; an intent the gateway already settled stays settled.
func HandleDelete(db *sqlx.DB, gw Creator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		p, _, err := fetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if p.Status == Pending {
			if err := gw.CancelPayment(ctx, p.ProviderID); err != nil {
				return gatewayErr(err)
			}

			up := StatusUp{
				ID:        p.ID,
				Status:    Cancelled,
				UpdatedAt: time.Now().UTC(),
			}
			if err := UpdateStatus(ctx, db, up); err != nil {
				return err
			}
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
