package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/vietcloud/vpshop/api/middleware"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/core/addon"
	"github.com/vietcloud/vpshop/core/auth"
	"github.com/vietcloud/vpshop/core/cart"
	"github.com/vietcloud/vpshop/core/console"
	"github.com/vietcloud/vpshop/core/discount"
	"github.com/vietcloud/vpshop/core/homepage"
	"github.com/vietcloud/vpshop/core/instance"
	"github.com/vietcloud/vpshop/core/order"
	"github.com/vietcloud/vpshop/core/payment"
	"github.com/vietcloud/vpshop/core/product"
	"github.com/vietcloud/vpshop/core/user"
	"github.com/vietcloud/vpshop/rate"
)

type APIConfig struct {
	CorsOrigin     string
	Log            logrus.FieldLogger
	DB             *sqlx.DB
	Session        *scs.SessionManager
	Guests         *cart.GuestStore
	Gateway        payment.Creator
	GatewayAccount string
	Watcher        *payment.Watcher
	Compute        instance.Compute
	Provisioner    *instance.Provisioner
	Stats          *instance.StatsCache
	Console        *console.Bridge
	Limiter        *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())
	a.mw = append(a.mw, middleware.RateLimit(cfg.Limiter))

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)

	merge := func(ctx context.Context, guestID, userID string) error {
		return cart.MergeGuest(ctx, cfg.DB, cfg.Guests, cfg.Log, guestID, userID)
	}

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session, merge))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)

	a.Handle(http.MethodGet, "/public/homepage", homepage.HandleShow(cfg.DB, cfg.Log))
	a.Handle(http.MethodGet, "/public/products", product.HandleList(cfg.DB))
	a.Handle(http.MethodGet, "/public/products/{id}", product.HandleShow(cfg.DB))
	a.Handle(http.MethodPost, "/public/products/{id}/quote", cart.HandleQuote(cfg.DB))
	a.Handle(http.MethodGet, "/public/os-templates", product.HandleListOSTemplates(cfg.DB))
	a.Handle(http.MethodGet, "/public/addons", addon.HandleList(cfg.DB))

	// The cart serves guests as well, so no authentication gate here.
	// Handlers branch on the session themselves.
	a.Handle(http.MethodGet, "/user/cart", cart.HandleShow(cfg.DB, cfg.Guests, cfg.Session))
	a.Handle(http.MethodDelete, "/user/cart", cart.HandleDelete(cfg.DB, cfg.Guests, cfg.Session))
	a.Handle(http.MethodPost, "/user/cart/items", cart.HandleCreateItem(cfg.DB, cfg.Guests, cfg.Session))
	a.Handle(http.MethodPut, "/user/cart/items/{id}", cart.HandleUpdateItem(cfg.DB, cfg.Guests, cfg.Session))
	a.Handle(http.MethodDelete, "/user/cart/items/{id}", cart.HandleDeleteItem(cfg.DB, cfg.Guests, cfg.Session))
	a.Handle(http.MethodPost, "/user/cart/checkout", order.HandleCheckout(cfg.DB), authen)

	a.Handle(http.MethodGet, "/user/orders", order.HandleList(cfg.DB), authen)
	a.Handle(http.MethodGet, "/user/orders/{id}/invoice", order.HandleInvoice(cfg.DB), authen)
	a.Handle(http.MethodGet, "/user/orders/{id}/payment", payment.HandleShowByOrder(cfg.DB), authen)
	a.Handle(http.MethodGet, "/user/orders/{id}", order.HandleShow(cfg.DB), authen)

	a.Handle(http.MethodPost, "/user/payment/create", payment.HandleCreate(cfg.DB, cfg.Gateway, cfg.GatewayAccount, cfg.Watcher), authen)
	a.Handle(http.MethodGet, "/user/payment/status/{id}", payment.HandleStatus(cfg.DB), authen)
	a.Handle(http.MethodPost, "/user/payment/check/{id}", payment.HandleCheck(cfg.DB, cfg.Gateway, cfg.Watcher), authen)
	a.Handle(http.MethodDelete, "/user/payment/{id}", payment.HandleDelete(cfg.DB, cfg.Gateway), authen)

	a.Handle(http.MethodPost, "/user/ssh-keys/generate", instance.HandleGenerateSSHKey(), authen)

	a.Handle(http.MethodGet, "/user/instances", instance.HandleList(cfg.DB), authen)
	a.Handle(http.MethodGet, "/user/instances/{id}/hardware", instance.HandleHardware(cfg.DB, cfg.Compute), authen)
	a.Handle(http.MethodGet, "/user/instances/{id}/metrics", instance.HandleMetrics(cfg.DB, cfg.Compute), authen)
	a.Handle(http.MethodGet, "/user/instances/{id}/live-stats", instance.HandleLiveStats(cfg.DB, cfg.Compute, cfg.Stats), authen)
	a.Handle(http.MethodPost, "/user/instances/{id}/configure-ssh", instance.HandleConfigureSSH(cfg.DB, cfg.Compute, cfg.Provisioner), authen)
	a.Handle(http.MethodGet, "/user/instances/{id}", instance.HandleShow(cfg.DB, cfg.Compute), authen)
	a.Handle(http.MethodPost, "/user/instances/{id}/{action}", instance.HandleAction(cfg.DB, cfg.Compute, cfg.Provisioner, cfg.Stats), authen)

	a.Handle(http.MethodPost, "/user/vm/{id}/console", console.HandleCreateSession(cfg.DB, cfg.Console.Sessions), authen)
	a.Handle(http.MethodGet, "/user/vm/{id}/console/ws", cfg.Console.Handle(cfg.DB), authen)

	a.Handle(http.MethodGet, "/admin/products", product.HandleListAll(cfg.DB), admin)
	a.Handle(http.MethodPost, "/admin/products", product.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/admin/products/{id}", product.HandleUpdate(cfg.DB), admin)

	a.Handle(http.MethodGet, "/admin/discounts", discount.HandleList(cfg.DB), admin)
	a.Handle(http.MethodPost, "/admin/discounts", discount.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/admin/discounts/{id}", discount.HandleUpdate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/admin/discounts/{id}", discount.HandleDelete(cfg.DB), admin)

	a.Handle(http.MethodGet, "/admin/addons", addon.HandleListAll(cfg.DB), admin)
	a.Handle(http.MethodPost, "/admin/addons", addon.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/admin/addons/{id}", addon.HandleUpdate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/admin/addons/{id}", addon.HandleDelete(cfg.DB), admin)

	a.Handle(http.MethodGet, "/admin/orders", order.HandleListAll(cfg.DB), admin)
	a.Handle(http.MethodPut, "/admin/orders/{id}/status", order.HandleUpdateStatus(cfg.DB), admin)

	a.Handle(http.MethodGet, "/admin/homepage/banners", homepage.HandleListBanners(cfg.DB), admin)
	a.Handle(http.MethodPost, "/admin/homepage/banners", homepage.HandleCreateBanner(cfg.DB), admin)
	a.Handle(http.MethodPut, "/admin/homepage/banners/{id}", homepage.HandleUpdateBanner(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/admin/homepage/banners/{id}", homepage.HandleDeleteBanner(cfg.DB), admin)

	a.Handle(http.MethodGet, "/admin/homepage/faqs", homepage.HandleListFAQs(cfg.DB), admin)
	a.Handle(http.MethodPost, "/admin/homepage/faqs", homepage.HandleCreateFAQ(cfg.DB), admin)
	a.Handle(http.MethodPut, "/admin/homepage/faqs/{id}", homepage.HandleUpdateFAQ(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/admin/homepage/faqs/{id}", homepage.HandleDeleteFAQ(cfg.DB), admin)

	a.Handle(http.MethodGet, "/admin/homepage/features", homepage.HandleListFeatures(cfg.DB), admin)
	a.Handle(http.MethodPost, "/admin/homepage/features", homepage.HandleCreateFeature(cfg.DB), admin)
	a.Handle(http.MethodPut, "/admin/homepage/features/{id}", homepage.HandleUpdateFeature(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/admin/homepage/features/{id}", homepage.HandleDeleteFeature(cfg.DB), admin)

	a.Handle(http.MethodPost, "/admin/homepage/featured", homepage.HandleAddFeatured(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/admin/homepage/featured/{id}", homepage.HandleRemoveFeatured(cfg.DB), admin)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
