package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/app"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/health"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/tracer"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.New(logger.ConfigFromEnv())
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger = appLogger.With(zap.String("service_name", cfg.ServiceName))
	appLogger.Info("Application starting...", zap.String("env", cfg.Env), zap.String("http_port", cfg.HTTPPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.InitTracer(ctx, cfg.ServiceName, cfg.OTelExporterOTLPEndpoint, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	application, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	go func() {
		if err := metrics.StartMetricsServer(ctx, cfg.MetricsPort, appLogger, application.Metrics.Registry); err != nil {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	if cfg.GRPCHealthPort != "" {
		healthServer := health.NewServer(map[string]health.Check{"mongodb": application.Ping}, 15*time.Second, appLogger)
		go func() {
			if err := healthServer.Serve(ctx, cfg.GRPCHealthPort); err != nil {
				appLogger.Error("gRPC health server failed", zap.Error(err))
			}
		}()
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           application.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server starting", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			appLogger.Error("HTTP server failed", zap.Error(err))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application shutting down...")
}
