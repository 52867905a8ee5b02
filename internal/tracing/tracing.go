package tracing

import (
	"io"

	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"

	"github.com/Mathoholic/exchange-updater/internal/logger"
)

type config interface {
	ServiceName() string
	TracingDisabled() bool
}

// Init installs a Jaeger tracer as the global opentracing tracer.
// Agent and sampler settings come from the standard JAEGER_* environment variables.
func Init(config config) (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, errors.Wrap(err, "read jaeger env")
	}
	cfg.ServiceName = config.ServiceName()
	cfg.Disabled = config.TracingDisabled()
	if cfg.Sampler.Type == "" {
		cfg.Sampler.Type = jaeger.SamplerTypeConst
		cfg.Sampler.Param = 1
	}

	closer, err := cfg.InitGlobalTracer(cfg.ServiceName)
	if err != nil {
		return nil, errors.Wrap(err, "init tracer")
	}
	logger.Info("tracing initialized", zap.String("service", cfg.ServiceName), zap.Bool("disabled", cfg.Disabled))
	return closer, nil
}
