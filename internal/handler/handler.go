// Package handler exposes the admin screens over HTTP.
package handler

import (
	"context"
	"net/http"
	"sort"

	"rent-admin/internal/calendar"
	"rent-admin/internal/export"
	"rent-admin/internal/form"
	"rent-admin/internal/highlight"
	mid "rent-admin/internal/middleware"
	"rent-admin/internal/upload"
	"rent-admin/internal/workspace"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/logger"
	"rent-admin/pkg/session"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	errNoWorkspace = errors.New("handler: no workspace in context")
	errBadBody     = errors.New("handler: invalid request data")
)

// Handler serves the admin API. Every /admin route works on the workspace
// of the calling session.
type Handler struct {
	gateway    *gateway.Client
	sessions   *session.Manager
	workspaces *workspace.Registry
}

func New(gw *gateway.Client, sessions *session.Manager, workspaces *workspace.Registry) *Handler {
	return &Handler{gateway: gw, sessions: sessions, workspaces: workspaces}
}

// Register mounts every route on e
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.POST("/auth/login", h.Login)

	guard := mid.SessionMiddleware(h.sessions, h.workspaces)
	e.POST("/auth/logout", h.Logout, guard)
	e.GET("/auth/me", h.Me, guard)

	admin := e.Group("/admin", guard)
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/notifications", h.Notifications)

	h.registerProducts(admin)
	h.registerCatalog(admin)
	h.registerOrders(admin)
	h.registerUsers(admin)
	h.registerBookings(admin)
	h.registerHighlighted(admin)
	admin.POST("/uploads", h.Upload)
}

func reqCtx(c echo.Context) context.Context {
	return c.Request().Context()
}

func current(c echo.Context) (*workspace.Workspace, error) {
	w, ok := mid.GetWorkspace(c)
	if !ok {
		return nil, errNoWorkspace
	}
	return w, nil
}

// fail maps err to a JSON error response
func (h *Handler) fail(c echo.Context, err error) error {
	log := logger.FromEcho(c)

	var validation *form.ValidationError
	var uploadErr *upload.ValidationError
	var apiErr *gateway.Error
	switch {
	case errors.Is(err, gateway.ErrUnauthorized):
		log.Warn("Rental API rejected the session token", zap.Error(err))
		h.endSession(c)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired, please log in again"})
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Message, "field": validation.Field})
	case errors.As(err, &uploadErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": uploadErr.Message, "file": uploadErr.File})
	case errors.Is(err, errBadBody):
		return badRequest(c, "Invalid request data")
	case errors.Is(err, form.ErrLastEntry),
		errors.Is(err, form.ErrOutOfRange),
		errors.Is(err, highlight.ErrOutOfRange),
		errors.Is(err, upload.ErrTooManyImages),
		errors.Is(err, export.ErrUnknownFormat):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, form.ErrNotOpen),
		errors.Is(err, form.ErrBusy),
		errors.Is(err, calendar.ErrNoSelection):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, calendar.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.Status == http.StatusNotFound {
			status = http.StatusNotFound
		}
		return c.JSON(status, echo.Map{"error": gateway.MessageOr(err, "rental API request failed")})
	case errors.Is(err, errNoWorkspace):
		log.Error("Route served without session middleware")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	log.Error("Request failed", zap.Error(err))
	return c.JSON(http.StatusBadGateway, echo.Map{"error": "rental API unavailable"})
}

// endSession forgets the session and its workspace
func (h *Handler) endSession(c echo.Context) {
	sess, ok := mid.GetSession(c)
	if !ok {
		return
	}
	h.workspaces.Drop(sess.ID)
	if err := h.sessions.Destroy(reqCtx(c), sess.ID); err != nil {
		logger.FromEcho(c).Warn("Failed to destroy session", zap.Error(err))
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// indexParam reads the :index path parameter
func indexParam(c echo.Context) (int, error) {
	var i int
	err := echo.PathParamsBinder(c).Int("index", &i).BindError()
	return i, err
}

// openRequest opens a form for create, or for edit when ID is set
type openRequest struct {
	ID string `json:"id"`
}

// fieldsOf decodes a PATCH body of field/value pairs
func fieldsOf(c echo.Context) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if err := c.Bind(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// applyFields sets each field in key order and returns the final state
func applyFields[D any](fields map[string]interface{}, set func(string, interface{}) (form.State[D], error), state func() form.State[D]) (form.State[D], error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := set(k, fields[k]); err != nil {
			return state(), err
		}
	}
	return state(), nil
}

// patchForm is the shared PATCH handler of the entity forms
func patchForm[D any](h *Handler, set func(*workspace.Workspace) func(string, interface{}) (form.State[D], error), state func(*workspace.Workspace) func() form.State[D]) echo.HandlerFunc {
	return func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		fields, err := fieldsOf(c)
		if err != nil {
			return badRequest(c, "Invalid request data")
		}
		st, err := applyFields(fields, set(w), state(w))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, st)
	}
}
