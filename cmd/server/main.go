package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"pcnappeal/internal/account"
	"pcnappeal/internal/appeal"
	appealhandler "pcnappeal/internal/appeal/handler"
	appealmetrics "pcnappeal/internal/appeal/metrics"
	"pcnappeal/internal/audit"
	"pcnappeal/internal/auth"
	"pcnappeal/internal/httpapi"
	"pcnappeal/internal/letter"
	"pcnappeal/internal/ocr"
	"pcnappeal/internal/payment"
	paymenthandler "pcnappeal/internal/payment/handler"
	"pcnappeal/internal/platform/config"
	"pcnappeal/internal/platform/httpserver"
	"pcnappeal/internal/platform/kafka"
	"pcnappeal/internal/platform/logger"
	platformredis "pcnappeal/internal/platform/redis"
	id "pcnappeal/pkg/domain"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthChecks := map[string]httpapi.HealthChecker{}

	// Storage. Empty Postgres URL means in-memory everything, which is the
	// development and unit test mode.
	var (
		caseStore  appeal.CaseStore
		auditStore audit.Store
		outbox     audit.OutboxStore
	)
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres pool failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		auditDB, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer auditDB.Close()

		caseStore = appeal.NewPostgresStore(pool)
		pgAudit := audit.NewPostgresStore(auditDB)
		auditStore = pgAudit
		outbox = pgAudit
		healthChecks["postgres"] = pool.Ping
	} else {
		log.Warn("no database configured, using in-memory stores")
		caseStore = appeal.NewMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}

	var idempotency payment.IdempotencyStore
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		idempotency = payment.NewRedisIdempotencyStore(redisClient.Client)
		healthChecks["redis"] = redisClient.Health
	} else {
		log.Warn("no redis configured, using in-memory idempotency store")
		idempotency = payment.NewMemoryIdempotencyStore()
	}

	// Audit pipeline.
	auditMetrics := audit.NewMetrics()
	auditor := audit.NewPublisher(auditStore,
		audit.WithLogger(log),
		audit.WithMetrics(auditMetrics),
	)

	g, ctx := errgroup.WithContext(ctx)

	if len(cfg.KafkaBrokers) > 0 && outbox != nil {
		producer, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka producer failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		worker := audit.NewWorker(outbox, producer, log, auditMetrics)
		g.Go(func() error {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else if outbox != nil {
		log.Warn("kafka not configured, outbox entries will accumulate")
	}

	// Services.
	letterClient := letter.NewClient(cfg.LetterBaseURL, cfg.LetterTimeout, log)
	appealService := appeal.NewService(caseStore, letterClient,
		appeal.WithLogger(log),
		appeal.WithMetrics(appealmetrics.New()),
		appeal.WithAuditor(auditor),
	)

	accountService := account.NewService(account.NewMemoryStore(), caseStore, log)

	reconciler := payment.NewReconciler(cfg.WebhookSecret, idempotency,
		caseConfirmer{appealService},
		payment.WithLogger(log),
		payment.WithMetrics(payment.NewMetrics()),
		payment.WithAuditor(auditor),
		payment.WithPlanApplier(accountService),
		payment.WithTolerance(cfg.WebhookTolerance),
	)

	ocrClient := ocr.NewClient(cfg.OCRBaseURL, cfg.OCRTimeout, log)
	jwtService := auth.NewJWTService(cfg.JWTSigningKey, "pcnappeal")

	router := httpapi.New(httpapi.Deps{
		Logger:       log,
		Validator:    jwtService,
		Appeals:      appealhandler.New(appealService, log),
		OCR:          ocr.NewHandler(ocrClient, log),
		Accounts:     account.NewHandler(accountService, log),
		Webhooks:     paymenthandler.New(reconciler, log),
		HealthChecks: healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g.Go(func() error {
		log.Info("starting pcnappeal", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// caseConfirmer adapts the appeal service to the reconciler's narrower
// interface.
type caseConfirmer struct {
	svc *appeal.Service
}

func (c caseConfirmer) ConfirmCasePayment(ctx context.Context, caseID id.CaseID, paymentRef string) (id.UserID, error) {
	confirmed, err := c.svc.ConfirmPayment(ctx, caseID, paymentRef)
	if err != nil {
		return id.UserID{}, err
	}
	return confirmed.UserID, nil
}
