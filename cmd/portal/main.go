package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mybankuml/banking-portal/docs"
	"github.com/mybankuml/banking-portal/internal/api"
	"github.com/mybankuml/banking-portal/internal/api/handler"
	"github.com/mybankuml/banking-portal/internal/api/middleware"
	"github.com/mybankuml/banking-portal/internal/core/ports"
	"github.com/mybankuml/banking-portal/internal/core/service"
	"github.com/mybankuml/banking-portal/internal/infrastructure/bankapi"
	mongodb "github.com/mybankuml/banking-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/mybankuml/banking-portal/internal/infrastructure/db/redis"
	"github.com/mybankuml/banking-portal/internal/infrastructure/queue"
	"github.com/mybankuml/banking-portal/internal/pkg/config"
	"github.com/mybankuml/banking-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title          MyBankUML Banking Portal
// @version        1.0
// @description    Session-aware portal in front of the MyBankUML banking backend.
// @BasePath       /
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "banking-portal",
	})
	docs.SwaggerInfo.BasePath = "/"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable")
	}
	defer func() { _ = rdb.Close() }()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb unavailable")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	auditRepo := mongodb.NewAuditRepository(db)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("audit indexes not ensured")
	}

	// --- Audit trail ---
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(auditRepo, logger.Component("audit")), logger.Component("dispatcher"))
	// Background context so Stop can drain queued events after the signal.
	dispatcher.Start(context.Background())

	// --- Backend and sessions ---
	bank := bankapi.New(cfg.BankAPI.URL, &http.Client{Timeout: cfg.BankAPI.Timeout}, logger.Component("bankapi"))

	sessionTTL := cfg.Session.TTL
	registry := service.NewRegistry(bank, func(sessionID string) ports.SessionStorage {
		return redisdb.NewSessionStorage(rdb, sessionID, sessionTTL)
	}, dispatcher, cfg.Session.Idle, logger.Component("session"))
	go registry.Run(ctx, 0)

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "portal",
		Name:      "active_sessions",
		Help:      "Number of browser sessions with a live store.",
	}, func() float64 { return float64(registry.Len()) })

	// --- Notifications ---
	var notifier ports.Notifier = queue.NopNotifier{}
	var publisher *queue.Publisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err = queue.DialPublisher(cfg.RabbitMQ.URL, logger.Component("notifier"))
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq unavailable")
		}
		notifier = publisher
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, e-transfer notifications disabled")
	}

	e := api.NewRouter(api.Dependencies{
		Log:      log,
		API:      bank,
		Sessions: registry,
		Session: middleware.SessionConfig{
			Secret: cfg.Session.Secret,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.CookieSecure,
		},
		Guard:    redisdb.NewSubmissionGuard(rdb, 0),
		Notifier: notifier,
		Readiness: map[string]handler.Pinger{
			"redis":   redisdb.Pinger{Client: rdb},
			"mongodb": mongodb.Pinger{Client: mongoClient},
		},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("backend", cfg.BankAPI.URL).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	dispatcher.Stop()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("rabbitmq close")
		}
	}
}
