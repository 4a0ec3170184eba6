package instance

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/vietcloud/vpshop/api/background"
	"github.com/vietcloud/vpshop/compute"
	"github.com/vietcloud/vpshop/core/order"
	"github.com/vietcloud/vpshop/validate"
)

// Compute is the slice of the hypervisor client this package uses.
type Compute interface {
	CreateVM(ctx context.Context, req compute.CreateRequest) (compute.VM, error)
	VM(ctx context.Context, id string) (compute.VM, error)
	Action(ctx context.Context, id, action string) error
	Hardware(ctx context.Context, id string) (compute.Hardware, error)
	LiveStats(ctx context.Context, id string) (compute.LiveStats, error)
	Metrics(ctx context.Context, id string, from, to time.Time, step time.Duration) ([]compute.MetricPoint, error)
	ConfigureSSH(ctx context.Context, id, publicKey string) error
}

// Provisioner creates instances for paid orders and reconciles their
// status with the hypervisor through readiness polls.
type Provisioner struct {
	Log      logrus.FieldLogger
	DB       *sqlx.DB
	Compute  Compute
	BG       *background.Background
	Interval time.Duration
	Timeout  time.Duration
}

// ProvisionOrder creates one VM per ordered unit and moves the order
// into provisioning. Called after payment confirmation.
func (p *Provisioner) ProvisionOrder(ctx context.Context, orderID string) error {
	ord, err := order.Fetch(ctx, p.DB, orderID)
	if err != nil {
		return fmt.Errorf("fetching order[%s]: %w", orderID, err)
	}

	if ord.Status != order.Paid {
		return nil
	}

	up := order.StatusUp{ID: ord.ID, Status: order.Provisioning, UpdatedAt: time.Now().UTC()}
	if err := order.UpdateStatus(ctx, p.DB, up); err != nil {
		return err
	}

	for _, it := range ord.Items {
		tpl := ""
		if it.OSTemplateID != nil {
			tpl = *it.OSTemplateID
		}

		for n := 0; n < it.Quantity; n++ {
			name := fmt.Sprintf("%s-%d", it.ProductName, n+1)

			vm, err := p.Compute.CreateVM(ctx, compute.CreateRequest{
				Name:         name,
				OSTemplateID: tpl,
			})
			if err != nil {
				return fmt.Errorf("creating vm for order item[%s]: %w", it.ID, err)
			}

			now := time.Now().UTC()
			itID := it.ID
			inst := Instance{
				ID:           validate.GenerateID(),
				ExternalVMID: vm.ID,
				UserID:       ord.UserID,
				OrderItemID:  &itID,
				Name:         name,
				Status:       Provisioning,
				VNCPort:      vm.VNCPort,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if vm.Status != "" {
				inst.Status = Status(vm.Status)
			}

			if err := Create(ctx, p.DB, inst); err != nil {
				return err
			}

			p.WatchReadiness(inst.ID, inst.ExternalVMID, ord.ID)
		}
	}

	return nil
}

// WatchReadiness polls the hypervisor until the instance settles,
// mirroring each observed status into the local row. When the whole
// order has settled the order completes.
func (p *Provisioner) WatchReadiness(instanceID, vmID, orderID string) {
	log := p.Log.WithFields(logrus.Fields{
		"instance_id": instanceID,
		"vm_id":       vmID,
	})

	p.BG.Add(func(ctx context.Context) {
		err := background.Poll(ctx, p.Interval, p.Timeout, func(ctx context.Context) (bool, error) {
			vm, err := p.Compute.VM(ctx, vmID)
			if err != nil {
				return false, err
			}

			st := Status(vm.Status)
			up := StatusUp{
				ID:        instanceID,
				Status:    st,
				VNCPort:   vm.VNCPort,
				UpdatedAt: time.Now().UTC(),
			}
			if err := UpdateStatus(ctx, p.DB, up); err != nil {
				return false, err
			}

			if !st.Settled() {
				return false, nil
			}

			if orderID != "" {
				if err := p.completeIfSettled(ctx, orderID); err != nil {
					return false, err
				}
			}

			return true, nil
		})
		if err != nil {
			log.WithField("message", err).Info("readiness watch stopped")
		}
	})
}

// completeIfSettled finishes the order once none of its instances are
// still in flight.
func (p *Provisioner) completeIfSettled(ctx context.Context, orderID string) error {
	const q = `
	SELECT count(*) FROM instances i
	JOIN order_items oi ON oi.order_item_id = i.order_item_id
	WHERE oi.order_id = $1
	  AND i.status IN ('PROVISIONING', 'CONFIGURING', 'STARTING', 'STOPPING', 'RESTARTING', 'SUSPENDING')`

	var pending int
	if err := sqlx.GetContext(ctx, p.DB, &pending, q, orderID); err != nil {
		return fmt.Errorf("counting unsettled instances of order[%s]: %w", orderID, err)
	}
	if pending > 0 {
		return nil
	}

	ord, err := order.Fetch(ctx, p.DB, orderID)
	if err != nil {
		return err
	}
	if !order.CanTransition(ord.Status, order.Completed) {
		return nil
	}

	up := order.StatusUp{ID: orderID, Status: order.Completed, UpdatedAt: time.Now().UTC()}
	return order.UpdateStatus(ctx, p.DB, up)
}
