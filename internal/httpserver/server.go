package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/telemetry"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

// NewEcho builds the echo instance with the shared middleware chain.
// Order: request id, metrics, request logger, recover, sentry.
func NewEcho(logger *slog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(telemetry.Middleware())
	return e
}
