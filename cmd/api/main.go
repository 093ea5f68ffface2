package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	httpadapter "github.com/hngprojects/docxtract/internal/adapters/http"
	"github.com/hngprojects/docxtract/internal/bootstrap"
	"github.com/hngprojects/docxtract/internal/config"
	"github.com/hngprojects/docxtract/internal/export"
	"github.com/hngprojects/docxtract/internal/observability/logging"
	"github.com/hngprojects/docxtract/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	var limiter *rate.Limiter
	if cfg.APIRateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.APIRateLimitRPS), cfg.APIRateLimitBurst)
	}

	router := httpadapter.NewRouter(httpadapter.RouterConfig{
		Uploader: app.UploadUC,
		Trigger:  app.TriggerUC,
		Reader:   app.ReadUC,
		Repo:     app.Repo,
		Storage:  app.Storage,
		Exporter: export.NewService(logger),
		Metrics:  metrics.NewHTTPServerMetrics("api"),
		Limiter:  limiter,
		MaxBytes: cfg.UploadMaxBytes,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
