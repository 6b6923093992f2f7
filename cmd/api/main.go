package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"

	"github.com/solpayhq/solpay/internal/bootstrap"
	"github.com/solpayhq/solpay/internal/controller"
	"github.com/solpayhq/solpay/internal/redis"
	"github.com/solpayhq/solpay/internal/repository/postgres"
	"github.com/solpayhq/solpay/internal/service"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "solpay-api", "solpay")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	usdcMint, err := solana.PublicKeyFromBase58(app.Config.Solana.USDCMint)
	if err != nil {
		app.Logger.Fatal().Err(err).Msg("Invalid USDC mint in configuration")
	}

	// --- Repositories ---
	merchantRepo := postgres.NewMerchantRepository(app.Pool)
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	idempotencyStore := redis.NewIdempotencyStore(app.Redis, app.Config.Redis.IdempotencyTTL)

	// --- Services ---
	paymentRequests := service.NewPaymentRequestService(
		merchantRepo, app.Jupiter, app.Jupiter, app.Solana,
		usdcMint, app.Config.Jupiter.SlippageBps, app.Metrics, app.Logger,
	)
	verifications := service.NewVerificationService(
		merchantRepo, paymentRepo, app.Solana, app.Metrics, app.Logger,
	)
	merchants := service.NewMerchantService(merchantRepo, paymentRepo, app.Logger)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:               app.Pool,
		RedisClient:        app.Redis,
		PaymentRequests:    paymentRequests,
		Verifications:      verifications,
		Merchants:          merchants,
		IdempotencyStore:   idempotencyStore,
		Metrics:            app.Metrics,
		CORSConfig:         app.Config.Server.CORS,
		RateLimitPerMinute: app.Config.Server.RequestsPerMinute,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
