package controller

import (
	"time"

	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/commercekit/checkout/internal/infrastructure/config"
	"github.com/commercekit/checkout/internal/infrastructure/observability"
	customMW "github.com/commercekit/checkout/internal/middleware"
	"github.com/commercekit/checkout/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool            *pgxpool.Pool
	RedisClient     *redis.Client
	PaymentRepo     payment.Repository
	CheckoutService *service.CheckoutService
	Metrics         *observability.Metrics
	RateLimit       int
	CORSConfig      config.CORSConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))
	if deps.RateLimit > 0 {
		r.Use(customMW.RateLimit(deps.RateLimit))
	}

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	orderH := NewOrderController(deps.CheckoutService)
	paymentH := NewPaymentController(deps.CheckoutService, deps.PaymentRepo)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Orders
		r.Post("/orders", orderH.Create)
		r.Get("/orders/{id}", orderH.Get)
		r.Post("/orders/{id}/items", orderH.AddItem)
		r.Delete("/orders/{id}/items/{sku}", orderH.RemoveItem)
		r.Put("/orders/{id}/shipping", orderH.SetShipping)
		r.Post("/orders/{id}/transition", orderH.Transition)

		// Payments
		r.Post("/orders/{id}/payments", paymentH.Attach)
		r.Delete("/orders/{id}/payments/{paymentID}", paymentH.Detach)
		r.Post("/orders/{id}/payments/{paymentID}/process", paymentH.Process)
		r.Get("/payments/{id}", paymentH.Get)
	})

	return r
}
