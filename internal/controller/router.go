package controller

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/solpayhq/solpay/internal/config"
	customMW "github.com/solpayhq/solpay/internal/middleware"
	"github.com/solpayhq/solpay/internal/observability"
	"github.com/solpayhq/solpay/internal/redis"
	"github.com/solpayhq/solpay/internal/service"
)

type RouterDeps struct {
	Pool               *pgxpool.Pool
	RedisClient        *goredis.Client
	PaymentRequests    *service.PaymentRequestService
	Verifications      *service.VerificationService
	Merchants          *service.MerchantService
	IdempotencyStore   *redis.IdempotencyStore
	Metrics            *observability.Metrics
	CORSConfig         config.CORSConfig
	RateLimitPerMinute int
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
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))
	if deps.RateLimitPerMinute > 0 {
		r.Use(customMW.RateLimit(deps.RateLimitPerMinute))
	}

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	paymentH := NewPaymentController(deps.PaymentRequests, deps.Verifications)
	merchantH := NewMerchantController(deps.Merchants)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating endpoints.
		idempotencyMW := customMW.Idempotency(deps.IdempotencyStore)

		r.Post("/payment-request", paymentH.CreatePaymentRequest)
		r.With(idempotencyMW).Post("/payment-verify", paymentH.VerifyPayment)

		r.Get("/merchant", merchantH.GetProfile)
		r.Post("/merchant", merchantH.Create)
		r.Get("/merchant/{id}/payments", merchantH.ListPayments)
	})

	return r
}
