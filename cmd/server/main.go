package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/email"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/service/search"
	"github.com/Skotchmaster/storefront/internal/telemetry"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error").Error("config_error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	flush, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Env,
		TracesSampleRate: 0.1,
	}, logger)
	if err != nil {
		logger.Warn("sentry_init_error", "error", err)
	}
	defer flush()

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err == nil {
		err = repo.Migrate(initCtx, gdb)
	}
	cancel()
	if err != nil {
		logger.Error("db_init_error", "error", err)
		os.Exit(1)
	}

	var events mykafka.Publisher = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka_init_error", "error", err)
			os.Exit(1)
		}
		events = prod
	} else {
		logger.Info("kafka_disabled", "reason", "no brokers configured")
	}

	var mailer email.Sender = email.Disabled{}
	if cfg.Email.Enabled() {
		mailer = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.User,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: "Storefront",
		})
	} else {
		logger.Warn("email_disabled", "reason", "EMAIL_USER or EMAIL_PASS not set")
	}

	r := &repo.GormRepo{DB: gdb}

	catalog := &service.CatalogService{Repo: r, Events: events}
	if cfg.ES.Enabled() {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(esCtx, cfg.ES, logger)
		if err == nil {
			idx := search.NewIndex(client, cfg.ES.Index)
			if err = idx.EnsureIndex(esCtx); err == nil {
				catalog.Index = idx
			}
		}
		esCancel()
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		}
	}

	authSvc := &service.AuthService{
		Repo:      r,
		Tokens:    tokens.NewIssuer(cfg.JWTSecret, cfg.JWTExpires),
		Mailer:    mailer,
		Events:    events,
		ClientURL: cfg.ClientURL,
	}

	m := metrics.New("storefront")
	e := httpserver.NewEcho(logger, m)
	httpserver.Register(e, &httpserver.Deps{
		DB:             gdb,
		AuthMW:         middleware.NewAuthMiddleware(cfg.JWTSecret, httpserver.PrincipalLoader{Repo: r}),
		Metrics:        m.Handler(),
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		ProductHandler: &httpserver.ProductHTTP{Svc: catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: events}},
		AdminHandler: &httpserver.AdminHTTP{Svc: &service.AdminService{
			Repo:    r,
			Auth:    authSvc,
			Catalog: catalog,
			Events:  events,
		}},
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http_server_started", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}

	logger.Info("shutdown complete")
}
