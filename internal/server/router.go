// Package server exposes the analytics admin surface over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"analyticsadmin/internal/analytics"
	"analyticsadmin/internal/logging"
	"analyticsadmin/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

// Services are the application services the router dispatches to
type Services struct {
	Registry *analytics.Registry
	Configs  *analytics.ConfigService
	Embed    *analytics.EmbedCodeService
}

func SetupRouter(services Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.RecoveryWithWriter(log.Writer(), func(c *gin.Context, err interface{}) {
		logging.Errorf("Panic:\n%s\n%s", err, string(debug.Stack()))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	driversHandler := NewDriversHandler(services.Registry)
	configsHandler := NewConfigsHandler(services.Configs)
	dashboardHandler := NewDashboardHandler(services.Configs, services.Embed)

	api := router.Group("/api")
	{
		api.GET("/drivers", driversHandler.ListHandler)
		api.GET("/drivers/:name/form", driversHandler.FormHandler)

		api.GET("/configs", configsHandler.ListHandler)
		api.POST("/configs", configsHandler.CreateHandler)
		api.GET("/configs/:id", configsHandler.GetHandler)
		api.PUT("/configs/:id", configsHandler.UpdateHandler)
		api.DELETE("/configs/:id", configsHandler.DeleteHandler)
		api.POST("/configs/:id/validate", configsHandler.ValidateHandler)

		api.GET("/embed", dashboardHandler.EmbedHandler)
		api.GET("/widgets", dashboardHandler.ListWidgetsHandler)
		api.GET("/widgets/:name", dashboardHandler.RenderWidgetHandler)
		api.GET("/reports", dashboardHandler.ListReportsHandler)
		api.GET("/reports/:name", dashboardHandler.LoadReportHandler)
	}

	return router
}

// Serve runs the router on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, services Services) error {
	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              addr,
		Handler:           SetupRouter(services),
		ReadHeaderTimeout: time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("✅ Admin API listening on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logging.Info("Shutting down admin API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
