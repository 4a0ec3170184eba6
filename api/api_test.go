package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/vietcloud/vpshop/core/console"
)

func testMux(t *testing.T) *mux.Router {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := APIConfig{
		Log:     log,
		Console: console.NewBridge(log, nil, nil),
	}

	r, ok := APIMux(cfg).(*mux.Router)
	if !ok {
		t.Fatal("expected a mux router")
	}
	return r
}

func TestCartItemRoutes(t *testing.T) {
	r := testMux(t)

	tests := []struct {
		method string
		path   string
		want   bool
	}{
		// Adding a line is non-idempotent, so it is a POST. PUT is
		// reserved for updating an existing line by id.
		{http.MethodPost, "/user/cart/items", true},
		{http.MethodPut, "/user/cart/items", false},
		{http.MethodPut, "/user/cart/items/item-1", true},
		{http.MethodDelete, "/user/cart/items/item-1", true},
		{http.MethodGet, "/user/cart", true},
		{http.MethodPost, "/user/cart/checkout", true},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		var m mux.RouteMatch
		if got := r.Match(req, &m); got != tt.want {
			t.Errorf("%s %s: expected match %t, but got %t", tt.method, tt.path, tt.want, got)
		}
	}
}
