package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger はDBやRedisの疎通確認
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)
}

func (h *HealthHandler) health(c echo.Context) error {
	if h.db != nil {
		if err := h.db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, errorJSON("db unavailable"))
		}
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}
