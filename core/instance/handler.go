package instance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/compute"
	"github.com/vietcloud/vpshop/core/claims"
	"github.com/vietcloud/vpshop/validate"
)

// computeErr keeps the hypervisor's message for the response when it
// sent one.
func computeErr(err error) error {
	var ce *compute.Error
	if errors.As(err, &ce) && ce.Message != "" {
		return weberr.NewError(err, ce.Message, http.StatusBadGateway)
	}
	return weberr.NewError(err, "instance service is unavailable", http.StatusBadGateway)
}

func FetchOwned(ctx context.Context, db *sqlx.DB, id string) (Instance, error) {
	if err := validate.CheckID(id); err != nil {
		return Instance{}, weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
	}

	clm, err := claims.Get(ctx)
	if err != nil {
		return Instance{}, weberr.NotAuthorized(errors.New("user not authenticated"))
	}

	inst, err := Fetch(ctx, db, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Instance{}, weberr.NotFound(err)
		}
		return Instance{}, err
	}

	if inst.UserID != clm.UserID && !claims.IsAdmin(ctx) {
		return Instance{}, weberr.NotFound(errors.New("instance does not belong to requester"))
	}

	return inst, nil
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		is, err := FetchByUser(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, is, http.StatusOK)
	}
}

// HandleShow refreshes the cached status from the hypervisor before
// answering, merging by field so a stale poll result cannot clobber
// anything else.
func HandleShow(db *sqlx.DB, cmp Compute) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		inst, err := FetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		vm, err := cmp.VM(ctx, inst.ExternalVMID)
		if err == nil {
			inst.Status = Status(vm.Status)
			inst.VNCPort = vm.VNCPort
			inst.UpdatedAt = time.Now().UTC()

			up := StatusUp{ID: inst.ID, Status: inst.Status, VNCPort: inst.VNCPort, UpdatedAt: inst.UpdatedAt}
			if err := UpdateStatus(ctx, db, up); err != nil {
				return err
			}
		}

		return web.Respond(ctx, w, inst, http.StatusOK)
	}
}

// HandleAction forwards start/stop/restart/suspend after checking the
// gating table against the hypervisor's current status.
func HandleAction(db *sqlx.DB, cmp Compute, prov *Provisioner, cache *StatsCache) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		action := Action(web.Param(r, "action"))
		switch action {
		case ActionStart, ActionStop, ActionRestart, ActionSuspend:
		default:
			err := fmt.Errorf("unknown action %q", action)
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		inst, err := FetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		status := inst.Status
		if vm, err := cmp.VM(ctx, inst.ExternalVMID); err == nil {
			status = Status(vm.Status)
		}

		if !status.Allows(action) {
			err := fmt.Errorf("action %s is not allowed while instance is %s", action, status)
			return weberr.Conflict(err)
		}

		if err := cmp.Action(ctx, inst.ExternalVMID, string(action)); err != nil {
			return computeErr(err)
		}

		// The counters reset across a stop, so drop the rate baseline.
		if action == ActionStop || action == ActionSuspend || action == ActionRestart {
			cache.Forget(inst.ExternalVMID)
		}

		inst.Status = action.Transitional()
		inst.UpdatedAt = time.Now().UTC()
		up := StatusUp{ID: inst.ID, Status: inst.Status, VNCPort: inst.VNCPort, UpdatedAt: inst.UpdatedAt}
		if err := UpdateStatus(ctx, db, up); err != nil {
			return err
		}

		prov.WatchReadiness(inst.ID, inst.ExternalVMID, "")

		return web.Respond(ctx, w, inst, http.StatusAccepted)
	}
}

func HandleHardware(db *sqlx.DB, cmp Compute) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		inst, err := FetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		hw, err := cmp.Hardware(ctx, inst.ExternalVMID)
		if err != nil {
			return computeErr(err)
		}

		return web.Respond(ctx, w, hw, http.StatusOK)
	}
}

// HandleMetrics proxies the historical series for the monitoring
// charts. Range defaults to the last 24 hours at 30s resolution.
func HandleMetrics(db *sqlx.DB, cmp Compute) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		inst, err := FetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		to := time.Now().UTC()
		from := to.Add(-24 * time.Hour)
		if v := web.Query(r, "from", ""); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return weberr.BadRequest(fmt.Errorf("invalid from: %w", err))
			}
			from = t
		}
		if v := web.Query(r, "to", ""); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return weberr.BadRequest(fmt.Errorf("invalid to: %w", err))
			}
			to = t
		}

		pts, err := cmp.Metrics(ctx, inst.ExternalVMID, from, to, 30*time.Second)
		if err != nil {
			return computeErr(err)
		}

		return web.Respond(ctx, w, pts, http.StatusOK)
	}
}

// HandleLiveStats returns the newest cumulative sample plus per-second
// rates against the previous one. The first call for a VM has no rates
// yet.
func HandleLiveStats(db *sqlx.DB, cmp Compute, cache *StatsCache) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		inst, err := FetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		st, err := cmp.LiveStats(ctx, inst.ExternalVMID)
		if err != nil {
			return computeErr(err)
		}

		rates, ok := cache.Observe(inst.ExternalVMID, st)

		out := struct {
			Stats    compute.LiveStats `json:"stats"`
			Rates    *Rates            `json:"rates,omitempty"`
			HasRates bool              `json:"hasRates"`
		}{Stats: st, HasRates: ok}
		if ok {
			out.Rates = &rates
		}

		return web.Respond(ctx, w, out, http.StatusOK)
	}
}

// HandleConfigureSSH pushes the user's public key to an instance that
// is waiting for it, then lets the readiness watcher follow the
// configuration through.
func HandleConfigureSSH(db *sqlx.DB, cmp Compute, prov *Provisioner) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		inst, err := FetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		var in struct {
			PublicKey string `json:"publicKey" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if inst.Status != WaitForSSHKey {
			err := fmt.Errorf("instance is %s, not waiting for an ssh key", inst.Status)
			return weberr.Conflict(err)
		}

		if err := cmp.ConfigureSSH(ctx, inst.ExternalVMID, in.PublicKey); err != nil {
			return computeErr(err)
		}

		inst.Status = Configuring
		inst.UpdatedAt = time.Now().UTC()
		up := StatusUp{ID: inst.ID, Status: inst.Status, VNCPort: inst.VNCPort, UpdatedAt: inst.UpdatedAt}
		if err := UpdateStatus(ctx, db, up); err != nil {
			return err
		}

		prov.WatchReadiness(inst.ID, inst.ExternalVMID, "")

		return web.Respond(ctx, w, inst, http.StatusAccepted)
	}
}
