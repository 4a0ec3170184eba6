package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/core/claims"
	"github.com/vietcloud/vpshop/core/user"
	"github.com/vietcloud/vpshop/validate"
	"golang.org/x/crypto/bcrypt"
)

// MergeFunc folds a guest cart into the freshly logged-in user's cart.
// Injected from the composition root so auth stays cart-agnostic.
type MergeFunc func(ctx context.Context, guestID, userID string) error

func HandleSignup(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var un user.UserNew
		if err := web.Decode(w, r, &un); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(un); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(un.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		usr := user.User{
			ID:        validate.GenerateID(),
			Name:      un.Name,
			Email:     un.Email,
			Role:      claims.RoleUser,
			PassHash:  hash,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := user.Create(ctx, db, usr); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, session *scs.SessionManager, merge MergeFunc) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in struct {
			Email    string `json:"email" validate:"required,email"`
			Password string `json:"password" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		usr, err := user.FetchByEmail(ctx, db, in.Email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return weberr.NotAuthorized(errors.New("invalid credentials"))
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword(usr.PassHash, []byte(in.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("invalid credentials"))
		}

		if !usr.Active {
			return weberr.NotAuthorized(errors.New("account is disabled"))
		}

		guestID := session.GetString(ctx, guestIDKey)

		// Renew the token on privilege change.
		if err := session.RenewToken(ctx); err != nil {
			return err
		}
		session.Put(ctx, userIDKey, usr.ID)
		session.Put(ctx, roleKey, usr.Role)

		if guestID != "" && merge != nil {
			if err := merge(ctx, guestID, usr.ID); err != nil {
				return err
			}
			session.Remove(ctx, guestIDKey)
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
