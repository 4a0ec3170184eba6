package homepage

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/core/product"
	"github.com/vietcloud/vpshop/validate"
)

// HandleShow assembles everything the landing page renders in one
// round trip. The sections are decorative, so a failing one degrades
// to empty instead of failing the page.
func HandleShow(db *sqlx.DB, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		bs, err := FetchBanners(ctx, db, true)
		if err != nil {
			log.WithField("message", err).Warn("homepage banners unavailable")
			bs = []Banner{}
		}

		fs, err := FetchFAQs(ctx, db, true)
		if err != nil {
			log.WithField("message", err).Warn("homepage faqs unavailable")
			fs = []FAQ{}
		}

		fts, err := FetchFeatures(ctx, db, true)
		if err != nil {
			log.WithField("message", err).Warn("homepage features unavailable")
			fts = []Feature{}
		}

		ps, err := FetchFeatured(ctx, db)
		if err != nil {
			log.WithField("message", err).Warn("featured products unavailable")
			ps = []product.Product{}
		}

		out := struct {
			Banners  []Banner          `json:"banners"`
			FAQs     []FAQ             `json:"faqs"`
			Features []Feature         `json:"features"`
			Featured []product.Product `json:"featuredProducts"`
		}{bs, fs, fts, ps}

		return web.Respond(ctx, w, out, http.StatusOK)
	}
}

func HandleListBanners(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		bs, err := FetchBanners(ctx, db, false)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, bs, http.StatusOK)
	}
}

func HandleCreateBanner(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var bn BannerNew
		if err := web.Decode(w, r, &bn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(bn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		b := Banner{
			ID:        validate.GenerateID(),
			Title:     bn.Title,
			ImageURL:  bn.ImageURL,
			LinkURL:   bn.LinkURL,
			Position:  bn.Position,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := CreateBanner(ctx, db, b); err != nil {
			return err
		}

		return web.Respond(ctx, w, b, http.StatusCreated)
	}
}

func HandleUpdateBanner(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var bu BannerUp
		if err := web.Decode(w, r, &bu); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(bu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		b, err := FetchBanner(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if bu.Title != nil {
			b.Title = *bu.Title
		}
		if bu.ImageURL != nil {
			b.ImageURL = *bu.ImageURL
		}
		if bu.LinkURL != nil {
			b.LinkURL = *bu.LinkURL
		}
		if bu.Position != nil {
			b.Position = *bu.Position
		}
		if bu.Active != nil {
			b.Active = *bu.Active
		}
		b.UpdatedAt = time.Now().UTC()

		if err := UpdateBanner(ctx, db, b); err != nil {
			return err
		}

		return web.Respond(ctx, w, b, http.StatusOK)
	}
}

func HandleDeleteBanner(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if err := DeleteBanner(ctx, db, id); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleListFAQs(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		fs, err := FetchFAQs(ctx, db, false)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, fs, http.StatusOK)
	}
}

func HandleCreateFAQ(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var fn FAQNew
		if err := web.Decode(w, r, &fn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(fn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		f := FAQ{
			ID:        validate.GenerateID(),
			Question:  fn.Question,
			Answer:    fn.Answer,
			Position:  fn.Position,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := CreateFAQ(ctx, db, f); err != nil {
			return err
		}

		return web.Respond(ctx, w, f, http.StatusCreated)
	}
}

func HandleUpdateFAQ(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var fu FAQUp
		if err := web.Decode(w, r, &fu); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(fu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		f, err := FetchFAQ(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if fu.Question != nil {
			f.Question = *fu.Question
		}
		if fu.Answer != nil {
			f.Answer = *fu.Answer
		}
		if fu.Position != nil {
			f.Position = *fu.Position
		}
		if fu.Active != nil {
			f.Active = *fu.Active
		}
		f.UpdatedAt = time.Now().UTC()

		if err := UpdateFAQ(ctx, db, f); err != nil {
			return err
		}

		return web.Respond(ctx, w, f, http.StatusOK)
	}
}

func HandleDeleteFAQ(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if err := DeleteFAQ(ctx, db, id); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleListFeatures(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		fs, err := FetchFeatures(ctx, db, false)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, fs, http.StatusOK)
	}
}

func HandleCreateFeature(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var fn FeatureNew
		if err := web.Decode(w, r, &fn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(fn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		f := Feature{
			ID:        validate.GenerateID(),
			Title:     fn.Title,
			Body:      fn.Body,
			Icon:      fn.Icon,
			Position:  fn.Position,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := CreateFeature(ctx, db, f); err != nil {
			return err
		}

		return web.Respond(ctx, w, f, http.StatusCreated)
	}
}

func HandleUpdateFeature(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var fu FeatureUp
		if err := web.Decode(w, r, &fu); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(fu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		f, err := FetchFeature(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if fu.Title != nil {
			f.Title = *fu.Title
		}
		if fu.Body != nil {
			f.Body = *fu.Body
		}
		if fu.Icon != nil {
			f.Icon = *fu.Icon
		}
		if fu.Position != nil {
			f.Position = *fu.Position
		}
		if fu.Active != nil {
			f.Active = *fu.Active
		}
		f.UpdatedAt = time.Now().UTC()

		if err := UpdateFeature(ctx, db, f); err != nil {
			return err
		}

		return web.Respond(ctx, w, f, http.StatusOK)
	}
}

func HandleDeleteFeature(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if err := DeleteFeature(ctx, db, id); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleAddFeatured(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var fn FeaturedNew
		if err := web.Decode(w, r, &fn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(fn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if _, err := product.Fetch(ctx, db, fn.ProductID); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if err := AddFeatured(ctx, db, fn); err != nil {
			return err
		}

		return web.Respond(ctx, w, fn, http.StatusCreated)
	}
}

func HandleRemoveFeatured(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if err := RemoveFeatured(ctx, db, id); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
