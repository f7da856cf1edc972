package handler

import (
	"context"
	"net/http"
	"time"

	"rent-admin/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Health reports the service status and whether the rental API answers
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(reqCtx(c), 3*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "gateway": "ok"}
	if _, err := h.gateway.Health(ctx); err != nil {
		logger.FromEcho(c).Warn("Rental API health check failed", zap.Error(err))
		status["gateway"] = "unreachable"
	}
	return c.JSON(http.StatusOK, status)
}
