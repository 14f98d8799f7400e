package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/commercekit/checkout/internal/bootstrap"
	"github.com/commercekit/checkout/internal/controller"
	infraRedis "github.com/commercekit/checkout/internal/infrastructure/redis"
	"github.com/commercekit/checkout/internal/providers"
	"github.com/commercekit/checkout/internal/repository/postgres"
	"github.com/commercekit/checkout/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "checkout-api", "checkout")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config

	// --- Providers and methods ---
	factory := providers.NewFactory()
	methods, err := bootstrap.BuildMethods(cfg, factory)
	if err != nil {
		app.Logger.Fatal().Err(err).Msg("Failed to build payment methods")
	}
	registry := service.NewMethodRegistry(methods...)

	// --- Repositories ---
	orderRepo := postgres.NewOrderRepository(app.Pool)
	paymentRepo := postgres.NewPaymentRepository(app.Pool, registry)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Infrastructure adapters ---
	locker := infraRedis.NewLockManager(app.Redis, cfg.Checkout.LockTTL, cfg.Checkout.LockRetries, cfg.Checkout.LockRetryDelay)
	publisher := infraRedis.NewStreamProducer(app.Redis)

	// --- Application service ---
	checkoutService := service.NewCheckoutService(
		orderRepo,
		paymentRepo,
		registry,
		factory,
		txManager,
		locker,
		publisher,
		app.Metrics,
		app.Logger,
	)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		PaymentRepo:     paymentRepo,
		CheckoutService: checkoutService,
		Metrics:         app.Metrics,
		RateLimit:       cfg.Server.RateLimit,
		CORSConfig:      cfg.Server.CORS,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		app.Logger.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
	app.Logger.Info().Msg("Server exited")
}
