package product

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
		ps, err := FetchAll(ctx, db, true)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleListAll(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ps, err := FetchAll(ctx, db, false)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		p, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleListOSTemplates(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ts, err := FetchOSTemplates(ctx, db)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ts, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pn ProductNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(pn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		p := Product{
			ID:           validate.GenerateID(),
			Name:         pn.Name,
			Description:  pn.Description,
			MonthlyPrice: pn.MonthlyPrice,
			YearlyPrice:  pn.YearlyPrice,
			Attributes:   pn.Attributes,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := Create(ctx, db, p); err != nil {
			return err
		}

		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var pu ProductUp
		if err := web.Decode(w, r, &pu); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(pu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		p, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if pu.Name != nil {
			p.Name = *pu.Name
		}
		if pu.Description != nil {
			p.Description = *pu.Description
		}
		if pu.MonthlyPrice != nil {
			p.MonthlyPrice = *pu.MonthlyPrice
		}
		if pu.YearlyPrice != nil {
			p.YearlyPrice = *pu.YearlyPrice
		}
		if pu.Attributes != nil {
			p.Attributes = pu.Attributes
		}
		if pu.Active != nil {
			p.Active = *pu.Active
		}
		p.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, p); err != nil {
			return err
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}
