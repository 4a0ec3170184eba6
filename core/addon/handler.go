package addon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/validate"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		as, err := FetchAll(ctx, db, true)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, as, http.StatusOK)
	}
}

func HandleListAll(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		as, err := FetchAll(ctx, db, false)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, as, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var an AddonNew
		if err := web.Decode(w, r, &an); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(an); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		a := Addon{
			ID:          validate.GenerateID(),
			Type:        an.Type,
			Name:        an.Name,
			Unit:        an.Unit,
			UnitPrice:   an.UnitPrice,
			MaxQuantity: an.MaxQuantity,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, a); err != nil {
			return err
		}

		return web.Respond(ctx, w, a, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var au AddonUp
		if err := web.Decode(w, r, &au); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(au); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		a, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if au.Name != nil {
			a.Name = *au.Name
		}
		if au.Unit != nil {
			a.Unit = *au.Unit
		}
		if au.UnitPrice != nil {
			a.UnitPrice = *au.UnitPrice
		}
		if au.MaxQuantity != nil {
			a.MaxQuantity = *au.MaxQuantity
		}
		if au.Active != nil {
			a.Active = *au.Active
		}
		a.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, a); err != nil {
			return err
		}

		return web.Respond(ctx, w, a, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if err := Delete(ctx, db, id); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
