package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vietcloud/vpshop/api"
	"github.com/vietcloud/vpshop/api/background"
	"github.com/vietcloud/vpshop/compute"
	"github.com/vietcloud/vpshop/config"
	"github.com/vietcloud/vpshop/core/cart"
	"github.com/vietcloud/vpshop/core/console"
	"github.com/vietcloud/vpshop/core/instance"
	"github.com/vietcloud/vpshop/core/payment"
	"github.com/vietcloud/vpshop/database"
	"github.com/vietcloud/vpshop/qrpay"
	"github.com/vietcloud/vpshop/rate"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "VPSHOP"
	var cfg config.Config
	if _, err := conf.Parse(prefix, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Auth.SessionLifetime

	bg := background.New(logger)

	gateway := qrpay.NewClient(cfg.Gateway.URL, cfg.Gateway.APIKey, cfg.Gateway.Timeout)
	hypervisor := compute.NewClient(cfg.Compute.URL, cfg.Compute.Token, cfg.Compute.Timeout)

	guests := cart.NewGuestStore(rdb, cfg.Auth.SessionLifetime)

	provisioner := &instance.Provisioner{
		Log:      logger,
		DB:       db,
		Compute:  hypervisor,
		BG:       bg,
		Interval: cfg.Watchers.ReadinessInterval,
		Timeout:  cfg.Watchers.ReadinessTimeout,
	}

	watcher := &payment.Watcher{
		Log:      logger,
		DB:       db,
		Gateway:  gateway,
		BG:       bg,
		Interval: cfg.Watchers.PaymentInterval,
		Timeout:  cfg.Watchers.PaymentTimeout,
		OnPaid: func(ctx context.Context, orderID string) {
			if err := provisioner.ProvisionOrder(ctx, orderID); err != nil {
				logger.WithField("message", err).Error("failed to provision order")
			}
		},
	}

	sameOrigin := func(r *http.Request) bool {
		if cfg.Cors.Origin == "" {
			return true
		}
		return strings.EqualFold(r.Header.Get("Origin"), cfg.Cors.Origin)
	}
	bridge := console.NewBridge(logger, hypervisor, sameOrigin)

	limiter := rate.NewLimiter(cfg.Rate.Burst, cfg.Rate.Expiry, cfg.Rate.PerSecond)

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:     cfg.Cors.Origin,
		Log:            logger,
		DB:             db,
		Session:        sessionManager,
		Guests:         guests,
		Gateway:        gateway,
		GatewayAccount: cfg.Gateway.AccountNo,
		Watcher:        watcher,
		Compute:        hypervisor,
		Provisioner:    provisioner,
		Stats:          instance.NewStatsCache(),
		Console:        bridge,
		Limiter:        limiter,
	})

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		if err := bg.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not complete all background tasks: %w", err)
		}
	}
	return nil
}
