package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/core/addon"
	"github.com/vietcloud/vpshop/core/auth"
	"github.com/vietcloud/vpshop/core/claims"
	"github.com/vietcloud/vpshop/core/product"
	"github.com/vietcloud/vpshop/validate"
)

// priceAddons resolves addon selections against the catalog, enforcing
// each addon's max quantity before anything is priced.
func priceAddons(ctx context.Context, db sqlx.ExtContext, sels []AddonSelection) ([]PricedAddon, error) {
	priced := make([]PricedAddon, 0, len(sels))
	for _, sel := range sels {
		a, err := addon.FetchByType(ctx, db, sel.AddonType)
		if err != nil {
			if errors.Is(err, addon.ErrNotFound) {
				e := fmt.Errorf("unknown addon type %q", sel.AddonType)
				return nil, weberr.NewError(e, e.Error(), http.StatusUnprocessableEntity)
			}
			return nil, err
		}

		if sel.Quantity > a.MaxQuantity {
			e := fmt.Errorf("addon %q exceeds max quantity %d", sel.AddonType, a.MaxQuantity)
			return nil, weberr.NewError(e, e.Error(), http.StatusUnprocessableEntity,
				weberr.WithFields(map[string]interface{}{"addon_type": sel.AddonType}))
		}

		priced = append(priced, PricedAddon{
			AddonType: a.Type,
			Unit:      a.Unit,
			UnitPrice: a.UnitPrice,
			Quantity:  sel.Quantity,
		})
	}

	return priced, nil
}

// buildItem prices an add-to-cart request into a persistable line item.
func buildItem(ctx context.Context, db sqlx.ExtContext, in ItemNew, now time.Time) (Item, error) {
	p, err := product.Fetch(ctx, db, in.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return Item{}, weberr.NotFound(err)
		}
		return Item{}, err
	}

	priced, err := priceAddons(ctx, db, in.Addons)
	if err != nil {
		return Item{}, err
	}

	pr, err := Quote(p, int(in.BillingCycle), in.Quantity, priced, in.DiscountCode)
	if err != nil {
		return Item{}, weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
	}

	it := Item{
		ID:           validate.GenerateID(),
		ProductID:    p.ID,
		ProductName:  p.Name,
		Quantity:     in.Quantity,
		BillingCycle: int(in.BillingCycle),
		UnitPrice:    pr.BasePrice.Round(0).IntPart(),
		TotalPrice:   pr.GrandTotal,
		Config: Config{
			AddonsApplied:   pr.Addons,
			DiscountApplied: pr.Discount,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	return decorate(it), nil
}

// HandleQuote prices a product configuration without touching the
// cart. This backs the product configuration page's running total.
func HandleQuote(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var in struct {
			Quantity     int              `json:"quantity" validate:"required,gte=1"`
			BillingCycle Cycle            `json:"billingCycle" validate:"required"`
			Addons       []AddonSelection `json:"addons" validate:"dive"`
			DiscountCode string           `json:"discountCode"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		p, err := product.Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		priced, err := priceAddons(ctx, db, in.Addons)
		if err != nil {
			return err
		}

		pr, err := Quote(p, int(in.BillingCycle), in.Quantity, priced, in.DiscountCode)
		if err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		return web.Respond(ctx, w, pr, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB, guests *GuestStore, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if clm, err := claims.Get(ctx); err == nil {
			c, err := Fetch(ctx, db, clm.UserID)
			if err != nil {
				return err
			}
			return web.Respond(ctx, w, c, http.StatusOK)
		}

		items, err := guests.Fetch(ctx, auth.GuestID(ctx, session))
		if err != nil {
			return err
		}

		c := Cart{
			Items:    items,
			Subtotal: Subtotal(items),
			VAT:      VATTotal(items),
			Total:    Total(items),
			Currency: "VND",
		}
		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleCreateItem(db *sqlx.DB, guests *GuestStore, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		it, err := buildItem(ctx, db, in, now)
		if err != nil {
			return err
		}

		if clm, err := claims.Get(ctx); err == nil {
			it.UserID = clm.UserID
			if err := CreateItem(ctx, db, it); err != nil {
				return err
			}
			return web.Respond(ctx, w, it, http.StatusCreated)
		}

		guestID := auth.GuestID(ctx, session)
		items, err := guests.Fetch(ctx, guestID)
		if err != nil {
			return err
		}

		it.ID = NewItemID(it.ProductID, it.BillingCycle, now)
		items = append(items, it)
		if err := guests.Save(ctx, guestID, items); err != nil {
			return err
		}

		return web.Respond(ctx, w, it, http.StatusCreated)
	}
}

func HandleUpdateItem(db *sqlx.DB, guests *GuestStore, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		itemID := web.Param(r, "id")

		var in ItemUp
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if clm, err := claims.Get(ctx); err == nil {
			it, err := FetchItem(ctx, db, clm.UserID, itemID)
			if err != nil {
				if errors.Is(err, ErrItemNotFound) {
					return weberr.NotFound(err)
				}
				return err
			}

			it, err = Rescale(it, in.Quantity)
			if err != nil {
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}

			it.UpdatedAt = time.Now().UTC()
			if err := UpdateItem(ctx, db, it); err != nil {
				return err
			}
			return web.Respond(ctx, w, it, http.StatusOK)
		}

		guestID := auth.GuestID(ctx, session)
		items, err := guests.Fetch(ctx, guestID)
		if err != nil {
			return err
		}

		for i, it := range items {
			if it.ID != itemID {
				continue
			}

			up, err := Rescale(it, in.Quantity)
			if err != nil {
				return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
			}

			up.UpdatedAt = time.Now().UTC()
			items[i] = up
			if err := guests.Save(ctx, guestID, items); err != nil {
				return err
			}
			return web.Respond(ctx, w, up, http.StatusOK)
		}

		return weberr.NotFound(ErrItemNotFound)
	}
}

func HandleDeleteItem(db *sqlx.DB, guests *GuestStore, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		itemID := web.Param(r, "id")

		if clm, err := claims.Get(ctx); err == nil {
			if err := DeleteItem(ctx, db, clm.UserID, itemID); err != nil {
				if errors.Is(err, ErrItemNotFound) {
					return weberr.NotFound(err)
				}
				return err
			}
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		guestID := auth.GuestID(ctx, session)
		items, err := guests.Fetch(ctx, guestID)
		if err != nil {
			return err
		}

		kept := items[:0]
		for _, it := range items {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		if len(kept) == len(items) {
			return weberr.NotFound(ErrItemNotFound)
		}

		if err := guests.Save(ctx, guestID, kept); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleDelete(db *sqlx.DB, guests *GuestStore, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if clm, err := claims.Get(ctx); err == nil {
			if err := Delete(ctx, db, clm.UserID); err != nil {
				return err
			}
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		if err := guests.Clear(ctx, auth.GuestID(ctx, session)); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// MergeGuest moves a guest cart into the user's server cart after
// login. Guest line items get fresh ids; the Redis key is dropped once
// everything is copied. A stale line that can no longer be inserted is
// logged and skipped so that it cannot fail the login.
func MergeGuest(ctx context.Context, db *sqlx.DB, guests *GuestStore, log logrus.FieldLogger, guestID, userID string) error {
	items, err := guests.Fetch(ctx, guestID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	insert := func(ctx context.Context, it Item) error {
		return CreateItem(ctx, db, it)
	}
	mergeItems(ctx, log, items, userID, time.Now().UTC(), insert)

	return guests.Clear(ctx, guestID)
}

// mergeItems copies guest lines into the user's cart through insert,
// dropping lines that fail with a warning instead of aborting.
func mergeItems(ctx context.Context, log logrus.FieldLogger, items []Item, userID string, now time.Time, insert func(context.Context, Item) error) {
	for _, it := range items {
		it.ID = validate.GenerateID()
		it.UserID = userID
		it.CreatedAt = now
		it.UpdatedAt = now

		if err := insert(ctx, it); err != nil {
			log.WithFields(logrus.Fields{
				"product_id": it.ProductID,
				"message":    err,
			}).Warn("dropping guest cart item that cannot be merged")
		}
	}
}
