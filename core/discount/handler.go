package discount

import (
	"context"
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/validate"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ds, err := FetchAll(ctx, db)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ds, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var dn DiscountNew
		if err := web.Decode(w, r, &dn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(dn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		d := Discount{
			ID:        validate.GenerateID(),
			Code:      dn.Code,
			ProductID: dn.ProductID,
			Percent:   dn.Percent,
			StartsAt:  dn.StartsAt,
			EndsAt:    dn.EndsAt,
			Active:    true,
		}

		if err := Create(ctx, db, d); err != nil {
			return err
		}

		return web.Respond(ctx, w, d, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var du DiscountUp
		if err := web.Decode(w, r, &du); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(du); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		d, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if du.Code != nil {
			d.Code = *du.Code
		}
		if du.Percent != nil {
			d.Percent = *du.Percent
		}
		if du.StartsAt != nil {
			d.StartsAt = *du.StartsAt
		}
		if du.EndsAt != nil {
			d.EndsAt = *du.EndsAt
		}
		if du.Active != nil {
			d.Active = *du.Active
		}

		if d.EndsAt.Before(d.StartsAt) {
			err := errors.New("discount window ends before it starts")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if err := Update(ctx, db, d); err != nil {
			return err
		}

		return web.Respond(ctx, w, d, http.StatusOK)
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
