package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"legatum/internal/audit"
	"legatum/internal/clients/llm"
	"legatum/internal/clients/vision"
	"legatum/internal/delivery"
	"legatum/internal/interpret"
	"legatum/internal/jwttoken"
	"legatum/internal/notification"
	"legatum/internal/platform/config"
	"legatum/internal/platform/httpserver"
	"legatum/internal/platform/logger"
	"legatum/internal/platform/metrics"
	platformredis "legatum/internal/platform/redis"
	"legatum/internal/resilience"
	"legatum/internal/store"
	httptransport "legatum/internal/transport/http"
	"legatum/internal/verification"
)

const auditSinkBuffer = 256

// main wires the pipeline end to end: stores, AI clients, the resilience
// layer, and the feature services behind the HTTP router. Business logic
// lives in the internal packages; this file only assembles them.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Persistence. Without a Postgres DSN everything stays in process
	// memory, which is enough for local development.
	var (
		userStore   store.UserStore
		policyStore store.PolicyStore
		auditStore  audit.Store
	)
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		userStore = store.NewPostgresUserStore(db)
		policyStore = store.NewPostgresPolicyStore(db)
		auditStore = audit.NewPostgresStore(db)
		log.Info("postgres stores enabled")
	} else {
		userStore = store.NewInMemoryUserStore()
		policyStore = store.NewInMemoryPolicyStore()
		auditStore = audit.NewInMemoryStore()
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
	}

	var deliveryStore delivery.Store = delivery.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		deliveryStore = delivery.NewRedisStore(redisClient.Client)
		log.Info("redis delivery store enabled")
	}

	// Audit trail. The Kafka sink is optional; the store always holds the
	// authoritative copy.
	group, ctx := errgroup.WithContext(ctx)

	var auditOpts []audit.Option
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer sink.Close()

		inbox := make(chan audit.Event, auditSinkBuffer)
		auditOpts = append(auditOpts, audit.WithSink(inbox))
		worker := audit.NewWorker(sink, inbox, log)
		group.Go(func() error {
			err := worker.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		log.Info("kafka audit sink enabled", "topic", cfg.Kafka.AuditTopic)
	}
	publisher := audit.NewPublisher(auditStore, log, auditOpts...)

	// Outbound AI clients and the shared resilience layer.
	visionClient, err := vision.New(cfg.Vision)
	if err != nil {
		return err
	}
	llmClient, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}
	manager := resilience.NewManager(cfg.Resilience,
		resilience.WithLogger(log),
		resilience.WithMetrics(m),
		resilience.WithAuditPublisher(publisher),
	)

	// Feature services.
	verifier, err := verification.New(userStore, visionClient, manager, cfg.Verification,
		verification.WithLogger(log),
		verification.WithMetrics(m),
		verification.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}
	interpreter, err := interpret.New(llmClient, manager,
		interpret.WithLogger(log),
		interpret.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}
	library := notification.NewLibrary(
		notification.WithLibraryLogger(log),
		notification.WithLibraryAuditPublisher(publisher),
	)
	generator, err := notification.NewGenerator(library, llmClient, manager,
		notification.WithLogger(log),
		notification.WithMetrics(m),
		notification.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}
	dispatcher, err := delivery.NewDispatcher(deliveryStore, cfg.Delivery,
		delivery.WithLogger(log),
		delivery.WithMetrics(m),
		delivery.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}

	validator := jwttoken.NewMiddlewareAdapter(
		jwttoken.NewJWTService(cfg.JWTSigningKey, "legatum", "legatum-api"),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Metrics:      m,
		JWTValidator: validator,

		Verification:  httptransport.NewVerificationHandler(verifier, log),
		Policies:      httptransport.NewPoliciesHandler(policyStore, interpreter, log),
		Notifications: httptransport.NewNotificationsHandler(generator, library, dispatcher, log),
		Services:      httptransport.NewServicesHandler(manager, log),
		Audit:         httptransport.NewAuditHandler(publisher, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	group.Go(func() error {
		log.Info("starting legatum server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
