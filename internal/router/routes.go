package router

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intersectiondata/leadflow/internal/config"
	"github.com/intersectiondata/leadflow/internal/handler"
	middlewarepkg "github.com/intersectiondata/leadflow/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Status *handler.StatusHandler
}

// Register wires the status API routes.
func Register(e *echo.Echo, cfg *config.Config, logger *slog.Logger, handlers Handlers) {
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(middlewarepkg.StatusRateLimiter(cfg.RateLimitStatus))

	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.GET("/stats", handlers.Status.Stats)
	e.GET("/replies", handlers.Status.Replies)
}
