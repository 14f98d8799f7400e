// Package bootstrap wires configuration, observability and the shared
// infrastructure clients used by every binary.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/commercekit/checkout/internal/infrastructure/config"
	"github.com/commercekit/checkout/internal/infrastructure/observability"
	infraRedis "github.com/commercekit/checkout/internal/infrastructure/redis"
	"github.com/commercekit/checkout/internal/providers"
	"github.com/commercekit/checkout/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Metrics *observability.Metrics

	tracerShutdown func(context.Context) error
}

func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info().Str("service", serviceName).Msg("Starting")

	app := &App{Config: cfg, Logger: logger}

	if cfg.Observability.EnableTracing {
		shutdown, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint, cfg.Observability.SampleRatio)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			app.tracerShutdown = shutdown
			logger.Info().Msg("Tracing enabled")
		}
	}

	app.Metrics = observability.NewMetrics(metricsNamespace, nil)

	app.Pool, err = postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info().Msg("Connected to PostgreSQL")

	app.Redis, err = infraRedis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		app.Pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info().Msg("Connected to Redis")

	return app, nil
}

func (a *App) Close() {
	if a.tracerShutdown != nil {
		a.tracerShutdown(context.Background())
	}
	a.Redis.Close()
	a.Pool.Close()
}

// BuildMethods turns the configured payment methods into domain methods
// backed by registered providers. One provider instance is registered per
// distinct provider name so methods sharing a gateway share its breaker.
func BuildMethods(cfg *config.Config, factory *providers.Factory) ([]*payment.Method, error) {
	registered := map[string]bool{}
	methods := make([]*payment.Method, 0, len(cfg.PaymentMethods))

	for _, mc := range cfg.PaymentMethods {
		if !registered[mc.Provider] {
			factory.Register(providers.NewMockProvider(mc.Provider))
			registered[mc.Provider] = true
		}
		provider, err := factory.Get(mc.Provider)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", mc.Code, err)
		}
		methods = append(methods, &payment.Method{
			Code:     mc.Code,
			Name:     mc.Name,
			Action:   mc.Action,
			Cost:     money.New(mc.CostCents, cfg.Checkout.Currency),
			Provider: provider,
		})
	}
	return methods, nil
}
