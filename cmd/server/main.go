package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"domainly/internal/audit"
	"domainly/internal/checkout"
	checkoutHandler "domainly/internal/checkout/handler"
	"domainly/internal/domains"
	domainsHandler "domainly/internal/domains/handler"
	"domainly/internal/payments"
	"domainly/internal/platform/config"
	"domainly/internal/platform/httpserver"
	"domainly/internal/platform/logger"
	"domainly/internal/platform/metrics"
	platformredis "domainly/internal/platform/redis"
	"domainly/internal/purchase"
	purchaseHandler "domainly/internal/purchase/handler"
	"domainly/internal/registrar"
	httptransport "domainly/internal/transport/http"
	"domainly/internal/webhook"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// healthChecks accumulates a probe per configured backing dependency.
	var healthChecks []httptransport.HealthCheck

	// Stores: Postgres when a DSN is configured, in-memory otherwise.
	var checkoutStore checkout.Store = checkout.NewInMemoryStore()
	var purchaseStore purchase.Store = purchase.NewInMemoryStore()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		cs := checkout.NewPostgresStore(db)
		ps := purchase.NewPostgresStore(db)
		if err := cs.EnsureSchema(ctx); err != nil {
			log.Error("checkout schema", "error", err)
			os.Exit(1)
		}
		if err := ps.EnsureSchema(ctx); err != nil {
			log.Error("purchase schema", "error", err)
			os.Exit(1)
		}
		checkoutStore, purchaseStore = cs, ps
		healthChecks = append(healthChecks, db.PingContext)
	}

	// Audit trail: Kafka when brokers are configured, process log otherwise.
	var publisher audit.Publisher = audit.NewLogPublisher(log)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka audit publisher", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}
	auditSvc := audit.NewService(publisher, log)
	go func() {
		if err := auditSvc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	// Provider clients.
	registrarClient := registrar.New(registrar.Config{
		BaseURL:   cfg.RegistrarBaseURL,
		APIKey:    cfg.RegistrarAPIKey,
		APISecret: cfg.RegistrarAPISecret,
	}, nil, m)
	paymentsClient := payments.New(payments.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PublicBaseURL: cfg.PublicBaseURL,
	}, m)

	var agreements purchase.RegistrarClient = registrarClient
	redisClient, err := platformredis.New(ctx, cfg.RedisAddr)
	if err != nil {
		log.Error("redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		agreements = registrar.WithAgreementCache(registrarClient, redisClient.Client, log)
		healthChecks = append(healthChecks, redisClient.Health)
	}

	health := func(ctx context.Context) error {
		for _, check := range healthChecks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	// Services and handlers.
	checkoutSvc := checkout.NewService(checkoutStore, paymentsClient, m, auditSvc)
	purchaseSvc := purchase.NewService(purchaseStore, checkoutStore, agreements, cfg.NameServers, log, m, auditSvc)
	domainsSvc := domains.NewService(registrarClient, log)

	router := httptransport.NewRouter(log, health,
		webhook.New(paymentsClient, log, m, auditSvc),
		checkoutHandler.New(checkoutSvc, log),
		purchaseHandler.New(purchaseSvc, log),
		domainsHandler.New(domainsSvc, log),
	)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting domainly", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
