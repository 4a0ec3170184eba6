package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/rate"
)

// RateLimit rejects requests over the per-client budget with a 429.
// Clients are keyed by remote IP.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !lim.Check(ip) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, err.Error(), http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
