package middleware

import (
	"net/http"
	"strings"

	"rent-admin/internal/workspace"
	"rent-admin/pkg/logger"
	"rent-admin/pkg/session"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	sessionKey   = "session"
	workspaceKey = "workspace"
)

// SessionMiddleware resolves the Bearer session id to an admin session and
// its workspace
func SessionMiddleware(sessions *session.Manager, workspaces *workspace.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			sess, err := sessions.Lookup(c.Request().Context(), parts[1])
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					log.Error("Session lookup failed", zap.Error(err))
				}
				workspaces.Drop(parts[1])
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
			}

			log = log.With(zap.String("session_id", sess.ID))
			c.Set("logger", log)
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), log)))
			c.Set(sessionKey, sess)
			c.Set(workspaceKey, workspaces.Get(sess.ID, sess))

			return next(c)
		}
	}
}

// GetSession retrieves the admin session from the context
func GetSession(c echo.Context) (*session.Session, bool) {
	sess, ok := c.Get(sessionKey).(*session.Session)
	return sess, ok
}

// GetWorkspace retrieves the session workspace from the context
func GetWorkspace(c echo.Context) (*workspace.Workspace, bool) {
	w, ok := c.Get(workspaceKey).(*workspace.Workspace)
	return w, ok
}
