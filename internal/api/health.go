package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type (
	Pinger interface {
		PingContext(ctx context.Context) error
	}

	Pong struct {
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
	}

	Health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Version  string `json:"version,omitempty"`
	}

	HealthHandler struct {
		db      Pinger
		version string
		log     *slog.Logger
	}
)

func NewHealthHandler(db Pinger, version string, log *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
		log:     log,
	}
}

func (h *HealthHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, Pong{Message: "pong", Timestamp: time.Now().UTC()})
}

func (h *HealthHandler) Health(c echo.Context) error {
	if err := h.db.PingContext(c.Request().Context()); err != nil {
		h.log.ErrorContext(c.Request().Context(), "database ping failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, Health{Status: "unhealthy", Database: "unreachable", Version: h.version})
	}
	return c.JSON(http.StatusOK, Health{Status: "ok", Database: "ok", Version: h.version})
}
