package handler

import (
	"net/http"
	"strings"

	mid "rent-admin/internal/middleware"
	"rent-admin/internal/model"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/jwtutil"
	"rent-admin/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LoginResponse carries the session id the admin sends as Bearer token
type LoginResponse struct {
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	ExpiresAt string     `json:"expiresAt,omitempty"`
}

// Login forwards the credentials to the rental API and opens a session for
// admin accounts
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromEcho(c)

	var creds model.Credentials
	if err := c.Bind(&creds); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	auth, err := h.gateway.Login(reqCtx(c), creds)
	if err != nil {
		var apiErr *gateway.Error
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			log.Info("Login rejected", zap.String("email", creds.Email), zap.Int("status", apiErr.Status))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": gateway.MessageOr(err, "Invalid credentials")})
		}
		log.Error("Login failed", zap.String("email", creds.Email), zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "Login failed"})
	}
	if auth.User.Role != model.RoleAdmin {
		log.Warn("Non-admin login refused", zap.String("email", creds.Email), zap.String("role", string(auth.User.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied. Admin privileges required."})
	}

	sess, err := h.sessions.Create(reqCtx(c), auth.Token)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token already expired"})
		}
		log.Error("Failed to create session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create session"})
	}

	resp := LoginResponse{Token: sess.ID, User: auth.User}
	if exp, ok := jwtutil.ExpiresAt(auth.Token); ok {
		resp.ExpiresAt = exp.UTC().Format("2006-01-02T15:04:05Z")
	}
	log.Info("Admin logged in", zap.String("user_id", auth.User.ID), zap.String("session_id", sess.ID))
	return c.JSON(http.StatusOK, resp)
}

// Logout ends the calling session
func (h *Handler) Logout(c echo.Context) error {
	if _, ok := mid.GetSession(c); !ok {
		return h.fail(c, errNoWorkspace)
	}
	h.endSession(c)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the account of the calling session
func (h *Handler) Me(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	user, err := w.Gateway.CurrentUser(reqCtx(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
