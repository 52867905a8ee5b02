package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/Mathoholic/exchange-updater/internal/app"
	"github.com/Mathoholic/exchange-updater/internal/config"
	"github.com/Mathoholic/exchange-updater/internal/logger"
)

type Response struct {
	Message string `json:"message"`
}

type handler struct {
	open func(ctx context.Context) (*app.Runtime, error)
}

// Handle runs one incremental update against the configured S3 object.
// It returns nil when no date was missing.
func (h *handler) Handle(ctx context.Context, event events.CloudWatchEvent) (*Response, error) {
	defer logger.Sync()
	logger.Info("Invocation", zap.String("source", event.Source), zap.String("id", event.ID))

	runtime, err := h.open(ctx)
	if err != nil {
		logger.Error("failed to init runtime", zap.Error(err))
		return nil, err
	}
	defer runtime.Close()

	summary, err := runtime.Updater.Update(ctx)
	if err != nil {
		logger.Error("update failed", zap.Error(err))
		return nil, err
	}
	if summary.NoOp {
		return nil, nil
	}
	return &Response{Message: "success"}, nil
}

func openS3Runtime(ctx context.Context) (*app.Runtime, error) {
	conf, err := config.New(config.WithBackend(config.BackendS3))
	if err != nil {
		return nil, err
	}
	return app.New(ctx, conf)
}

func main() {
	h := &handler{open: openS3Runtime}
	lambda.Start(h.Handle)
}
