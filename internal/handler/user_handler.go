package handler

import (
	"net/http"

	"rent-admin/internal/form"
	"rent-admin/internal/listing"
	"rent-admin/internal/model"
	"rent-admin/internal/notify"
	"rent-admin/internal/workspace"

	"github.com/labstack/echo/v4"
)

func (h *Handler) registerUsers(g *echo.Group) {
	registerList(h, g, "/users", func(w *workspace.Workspace) *listing.Controller[model.User] { return w.Users })
	g.POST("/users/:id/toggle", h.ToggleUser)
	g.DELETE("/users/:id", h.DeleteUser)
}

// ToggleUser flips the active flag of a user
func (h *Handler) ToggleUser(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := form.ToggleUser(reqCtx(c), w.Gateway, c.Param("id"), w.Notes, w.Bus); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUser removes a user account
func (h *Handler) DeleteUser(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := form.Delete(reqCtx(c), "User", c.Param("id"), w.Gateway.DeleteUser, w.Notes, w.Bus, notify.TopicUsers); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
