// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortunto2/superduperai-landing-sub000/internal/config"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/repository"
	pg "github.com/fortunto2/superduperai-landing-sub000/internal/infra/db/postgres"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/generation"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/logging"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/metrics"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/payment"
	red "github.com/fortunto2/superduperai-landing-sub000/internal/infra/redis"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/sched"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/web"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/worker"
	"github.com/fortunto2/superduperai-landing-sub000/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted fields)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}
	if cfg.Payment.Stripe.AllowUnverified {
		logger.Warn().Msg("webhook signature verification DISABLED")
	}

	metrics.MustRegister()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	statusRepo := red.NewStatusRepo(redisClient, cfg.Status.TTL)

	// ---- Postgres (optional audit log) ----
	var eventLog repository.EventLogRepository
	if cfg.Database.URL != "" {
		dbPool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer dbPool.Close()
		eventLog = pg.NewEventLogRepo(dbPool)
	} else {
		logger.Info().Msg("database.url not set; webhook audit log disabled")
	}

	// ---- Adapters ----
	verifier := payment.NewStripeVerifier(cfg.Payment.Stripe.WebhookSecret, cfg.Payment.Stripe.AllowUnverified)
	genClient := generation.NewClient(&cfg.Generation)

	// ---- Use cases ----
	webhookUC := usecase.NewWebhookUseCase(
		statusRepo, statusRepo, eventLog, genClient, verifier,
		cfg.Generation.Defaults, cfg.Generation.Timeout, cfg.Runtime.Dev, logger,
	)
	statusUC := usecase.NewStatusUseCase(statusRepo)

	// ---- Reconciler ----
	pool := worker.NewPool(cfg.Reconciler.Workers, logger)
	pool.Start(ctx)
	reconciler := sched.NewStatusReconciler(
		statusRepo, genClient, pool,
		cfg.Reconciler.Interval, cfg.Reconciler.StaleAfter, logger,
	)
	go reconciler.Start(ctx)

	// ---- HTTP server ----
	srv := web.NewServer(webhookUC, statusUC, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	pool.Stop()
}
