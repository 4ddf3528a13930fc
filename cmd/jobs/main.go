// Command jobs runs the maintenance tasks: deactivating expired coupons,
// warning owners of expiring subscriptions and expiring them. With -once it
// runs a single pass, suitable for cron; otherwise it loops on JOB_INTERVAL.
package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/app"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	once := flag.Bool("once", false, "run a single maintenance pass and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.New(logger.ConfigFromEnv()).Named("jobs")
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	if *once {
		if err := application.Services.Jobs.RunOnce(ctx); err != nil {
			appLogger.Error("Maintenance pass finished with errors", zap.Error(err))
		}
		return
	}
	appLogger.Info("Maintenance loop starting", zap.Duration("interval", cfg.JobInterval))
	application.Services.Jobs.Run(ctx, cfg.JobInterval)
	appLogger.Info("Maintenance loop stopped")
}
