package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"bloodbank/internal/bank"
	bankhandler "bloodbank/internal/bank/handler"
	bankmetrics "bloodbank/internal/bank/metrics"
	bankservice "bloodbank/internal/bank/service"
	"bloodbank/internal/bank/service/allocation"
	"bloodbank/internal/bank/service/eligibility"
	"bloodbank/internal/bank/store/inventory"
	"bloodbank/internal/bank/store/ledger"
	"bloodbank/internal/bank/store/person"
	"bloodbank/internal/platform/config"
	"bloodbank/internal/platform/httpserver"
	"bloodbank/internal/platform/jwt"
	"bloodbank/internal/platform/logger"
	platformmetrics "bloodbank/internal/platform/metrics"
	"bloodbank/internal/platform/middleware"
	"bloodbank/internal/platform/postgres"
	platformredis "bloodbank/internal/platform/redis"
	audit "bloodbank/pkg/platform/audit"
	auditmemory "bloodbank/pkg/platform/audit/store/memory"
	auditworker "bloodbank/pkg/platform/audit/worker"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal/bank packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		inventoryStore inventory.Store
		ledgerStore    ledger.Store
		donorStore     person.DonorStore
		recipientStore person.RecipientStore
		boundary       bankservice.Tx
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			return
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema bootstrap failed", "error", err)
			return
		}
		inventoryStore = inventory.NewPostgres(db)
		ledgerStore = ledger.NewPostgres(db)
		donorStore = person.NewPostgresDonorStore(db)
		recipientStore = person.NewPostgresRecipientStore(db)
		boundary = newBankPostgresTx(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		inventoryStore = inventory.NewInMemoryStore()
		ledgerStore = ledger.NewInMemoryStore()
		donorStore = person.NewInMemoryDonorStore()
		recipientStore = person.NewInMemoryRecipientStore()
		boundary = bankservice.NewShardedTx()
	}

	var idemStore middleware.IdempotencyStore = middleware.NewMemoryIdempotencyStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		return
	}
	if redisClient != nil {
		defer redisClient.Close()
		idemStore = platformredis.NewIdempotencyStore(redisClient)
	}

	httpMetrics := platformmetrics.New()
	domainMetrics := bankmetrics.New()

	auditInbox := make(chan audit.Event, 256)
	auditStore := auditmemory.New()

	eligibilitySvc := eligibility.New(donorStore, recipientStore)
	allocationSvc := allocation.New(inventoryStore)
	bankSvc := bankservice.New(
		inventoryStore, ledgerStore, donorStore, recipientStore,
		eligibilitySvc, allocationSvc, boundary,
		bankservice.WithLogger(log),
		bankservice.WithMetrics(domainMetrics),
		bankservice.WithAudit(auditInbox),
	)

	// Seed the inventory gauge so restarts do not zero it.
	for _, bloodType := range bank.BloodTypes {
		total, err := bankSvc.Availability(ctx, bloodType)
		if err != nil {
			log.Warn("inventory gauge seed failed", "blood_type", string(bloodType), "error", err)
			continue
		}
		domainMetrics.SetInventory(string(bloodType), total)
	}

	handler := bankhandler.New(
		bankSvc, log, httpMetrics,
		jwt.NewValidator(cfg.JWTSigningKey),
		idemStore, cfg.IdempotencyTTL,
	)

	router := chi.NewRouter()
	handler.Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return auditworker.NewWorker(auditStore, auditInbox).Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting bloodbank server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
	}
}
