package handler

import (
	"net/http"

	"rent-admin/internal/dashboard"

	"github.com/labstack/echo/v4"
)

// Dashboard returns the merged order and user statistics
func (h *Handler) Dashboard(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	summary, err := dashboard.Load(reqCtx(c), w.Gateway, w.Notes)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// Notifications drains the pending notifications of the session
func (h *Handler) Notifications(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, w.Notes.Drain())
}
