package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rent-admin/internal/handler"
	mid "rent-admin/internal/middleware"
	"rent-admin/internal/workspace"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/logger"
	"rent-admin/pkg/session"
	"rent-admin/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const sweepInterval = 5 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

// purger is implemented by stores that need expired rows removed
type purger interface {
	Purge(ctx context.Context) (int64, error)
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appConfig, err := setup()
	if err != nil {
		return err
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+serviceName, appConfig.LogConfig()...)

	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	store, err := session.Open(ctx, appConfig)
	if err != nil {
		log.Error("Failed to open session store", zap.Error(err))
		return err
	}
	defer store.Close()
	log.Info("Session store ready", zap.String("store", appConfig.Session.Store))

	gw := gateway.NewClient(appConfig.Gateway.BaseURL, appConfig.Gateway.Timeout)
	sessions := session.NewManager(store, appConfig.Session.TTL)
	workspaces := workspace.NewRegistry(appConfig, gw)
	defer workspaces.Close()
	go workspaces.Run(ctx, sweepInterval, appConfig.Session.TTL)
	if p, ok := store.(purger); ok {
		go purgeLoop(ctx, p)
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	handler.New(gw, sessions, workspaces).Register(e)

	port := appConfig.Server.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server error", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// purgeLoop removes expired sessions from stores without native expiry
func purgeLoop(ctx context.Context, p purger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.Purge(ctx)
			if err != nil {
				logger.GetLogger().Warn("Failed to purge expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.GetLogger().Info("Purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}
