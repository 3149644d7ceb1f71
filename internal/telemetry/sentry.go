package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
}

// InitSentry is a no-op without a DSN. The returned func flushes buffered events.
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	if cfg.DSN == "" {
		logger.Info("sentry disabled", "reason", "SENTRY_DSN not configured")
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return func() {}, fmt.Errorf("sentry init: %w", err)
	}

	logger.Info("sentry enabled", "environment", cfg.Environment)
	return func() { sentry.Flush(2 * time.Second) }, nil
}

func Middleware() echo.MiddlewareFunc {
	return sentryecho.New(sentryecho.Options{
		Repanic:         true,
		WaitForDelivery: false,
	})
}

// CaptureError reports err on the request hub when there is one.
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
