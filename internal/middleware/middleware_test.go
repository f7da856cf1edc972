package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rent-admin/internal/workspace"
	"rent-admin/pkg/config"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/session"

	"github.com/labstack/echo/v4"
)

func newEcho(t *testing.T) (*echo.Echo, *session.Manager, *workspace.Registry) {
	t.Helper()
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour)
	cfg := &config.Config{Picker: config.PickerConfig{Debounce: time.Millisecond}}
	workspaces := workspace.NewRegistry(cfg, gateway.NewClient("http://127.0.0.1:1", time.Second))
	t.Cleanup(workspaces.Close)

	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.Use(MetricsMiddleware)
	g := e.Group("/admin", SessionMiddleware(sessions, workspaces))
	g.GET("/whoami", func(c echo.Context) error {
		w, ok := GetWorkspace(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, w.ID)
	})
	return e, sessions, workspaces
}

func TestSessionMiddleware(t *testing.T) {
	e, sessions, workspaces := newEcho(t)
	sess, err := sessions.Create(context.Background(), "opaque-token")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"unknown session", "Bearer 2b0c3f0e-8f1c-4c55-9d0e-7c1f3a9d2b11", http.StatusUnauthorized},
		{"valid session", "Bearer " + sess.ID, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if rec.Header().Get(echo.HeaderXRequestID) == "" {
				t.Error("missing X-Request-ID")
			}
			if tt.status == http.StatusOK && rec.Body.String() != sess.ID {
				t.Errorf("workspace = %q", rec.Body.String())
			}
		})
	}
	if workspaces.Len() != 1 {
		t.Errorf("workspaces = %d", workspaces.Len())
	}
}

func TestRequestIDKeepsValidHeader(t *testing.T) {
	e, _, _ := newEcho(t)
	id := "2b0c3f0e-8f1c-4c55-9d0e-7c1f3a9d2b11"
	req := httptest.NewRequest(http.MethodGet, "/nothing", nil)
	req.Header.Set(echo.HeaderXRequestID, id)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderXRequestID); got != id {
		t.Errorf("X-Request-ID = %q", got)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}
