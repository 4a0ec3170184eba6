package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/core/claims"
	"github.com/vietcloud/vpshop/random"
)

// Session keys.
const (
	userIDKey  = "user_id"
	roleKey    = "role"
	guestIDKey = "guest_id"
)

// LoadAndSave adapts the scs middleware to the web.Handler chain. It
// also lifts session credentials into claims so downstream handlers
// never touch the session directly.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error

			sh := session.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := r.Context()
				if uid := session.GetString(ctx, userIDKey); uid != "" {
					ctx = claims.Set(ctx, claims.Claims{
						UserID: uid,
						Role:   session.GetString(ctx, roleKey),
					})
				}
				err = handler(ctx, w, r)
			}))

			sh.ServeHTTP(w, r.WithContext(ctx))
			return err
		}
		return h
	}
	return m
}

// Authenticate rejects requests without a logged-in session.
func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if _, err := claims.Get(ctx); err != nil {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Admin rejects requests whose session lacks the ADMIN role.
func Admin(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !claims.IsAdmin(ctx) {
				return weberr.NotAuthorized(errors.New("admin role required"))
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// GuestID returns the session's guest cart token, minting one on first
// use. Guests get a token before they get an account; it keys their
// cart in Redis the way the storefront keyed it in local storage.
func GuestID(ctx context.Context, session *scs.SessionManager) string {
	if id := session.GetString(ctx, guestIDKey); id != "" {
		return id
	}

	id := random.String(24)
	session.Put(ctx, guestIDKey, id)
	return id
}
