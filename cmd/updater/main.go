package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Mathoholic/exchange-updater/internal/app"
	"github.com/Mathoholic/exchange-updater/internal/config"
	"github.com/Mathoholic/exchange-updater/internal/logger"
)

func main() {
	defer logger.Sync()

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runtime, err := app.New(ctx, conf)
	if err != nil {
		logger.Fatal("failed to init runtime", zap.Error(err))
	}

	summary, err := runtime.Updater.Update(ctx)
	runtime.Close()
	if err != nil {
		logger.Fatal("update failed", zap.Error(err))
	}

	logger.Info("Exchange rates are up to date",
		zap.String("base", summary.Base),
		zap.String("latest", summary.Latest),
		zap.Int("added", len(summary.Added)),
		zap.Int("skipped", len(summary.Skipped)))
}
