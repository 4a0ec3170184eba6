package payment

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/vietcloud/vpshop/api/background"
	"github.com/vietcloud/vpshop/core/order"
	"github.com/vietcloud/vpshop/qrpay"
)

// Gateway is the slice of the qrpay client the watcher needs.
type Gateway interface {
	GetPayment(ctx context.Context, id string) (qrpay.Payment, error)
}

// Watcher polls the gateway for payment confirmations. Each watched
// payment is one cancellable task owned by the Background, stopped by
// a terminal status, the timeout, or shutdown.
type Watcher struct {
	Log      logrus.FieldLogger
	DB       *sqlx.DB
	Gateway  Gateway
	BG       *background.Background
	Interval time.Duration
	Timeout  time.Duration

	// OnPaid runs after an order is fulfilled, e.g. to kick off
	// provisioning. Optional.
	OnPaid func(ctx context.Context, orderID string)
}

func statusOf(gs qrpay.Status) Status {
	switch gs {
	case qrpay.StatusPaid:
		return Paid
	case qrpay.StatusExpired:
		return Expired
	case qrpay.StatusCancelled:
		return Cancelled
	default:
		return Pending
	}
}

// Watch starts the polling task for one payment.
func (w *Watcher) Watch(paymentID, providerID, orderID string) {
	log := w.Log.WithFields(logrus.Fields{
		"payment_id":  paymentID,
		"provider_id": providerID,
	})

	w.BG.Add(func(ctx context.Context) {
		err := background.Poll(ctx, w.Interval, w.Timeout, func(ctx context.Context) (bool, error) {
			return w.check(ctx, paymentID, providerID, orderID)
		})
		if err != nil {
			log.WithField("message", err).Info("payment watch stopped")
		}
	})
}

// check is one poll round. Gateway errors are returned so the next
// tick retries; a terminal status settles the payment and stops.
func (w *Watcher) check(ctx context.Context, paymentID, providerID, orderID string) (bool, error) {
	gp, err := w.Gateway.GetPayment(ctx, providerID)
	if err != nil {
		return false, err
	}

	if !gp.Status.Terminal() {
		return false, nil
	}

	if err := w.settle(ctx, paymentID, orderID, statusOf(gp.Status)); err != nil {
		return false, err
	}

	return true, nil
}

// settle records the terminal status and, for a paid payment, fulfills
// the order. Safe to call twice: UpdateStatus skips settled rows and
// Fulfill skips non-pending orders.
func (w *Watcher) settle(ctx context.Context, paymentID, orderID string, st Status) error {
	up := StatusUp{
		ID:        paymentID,
		Status:    st,
		UpdatedAt: time.Now().UTC(),
	}
	if err := UpdateStatus(ctx, w.DB, up); err != nil {
		return err
	}

	if st != Paid {
		return nil
	}

	if err := order.Fulfill(ctx, w.DB, orderID); err != nil {
		return err
	}

	if w.OnPaid != nil {
		w.OnPaid(ctx, orderID)
	}

	return nil
}
