package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	var fromYear, toYear int
	flag.IntVar(&fromYear, "from", conf.App().Epoch().Year(), "first year to backfill")
	flag.IntVar(&toYear, "to", time.Now().Year(), "last year to backfill")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runtime, err := app.New(ctx, conf)
	if err != nil {
		logger.Fatal("failed to init runtime", zap.Error(err))
	}

	summary, err := runtime.Backfiller().Run(ctx, fromYear, toYear)
	runtime.Close()
	if err != nil {
		logger.Fatal("backfill failed", zap.Error(err))
	}

	for year := fromYear; year <= toYear; year++ {
		if added, ok := summary.Added[year]; ok {
			logger.Info("Year backfilled", zap.Int("year", year), zap.Int("added", added))
		}
	}
	logger.Info("Backfill complete", zap.Int("rows", summary.Combined))
}
