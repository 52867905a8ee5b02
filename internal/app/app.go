package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Mathoholic/exchange-updater/internal/clients/cache"
	"github.com/Mathoholic/exchange-updater/internal/clients/kafka"
	"github.com/Mathoholic/exchange-updater/internal/clients/tg"
	"github.com/Mathoholic/exchange-updater/internal/clients/xrates"
	"github.com/Mathoholic/exchange-updater/internal/config"
	"github.com/Mathoholic/exchange-updater/internal/entity/currency"
	"github.com/Mathoholic/exchange-updater/internal/logger"
	"github.com/Mathoholic/exchange-updater/internal/model/rates"
	"github.com/Mathoholic/exchange-updater/internal/model/storage"
	"github.com/Mathoholic/exchange-updater/internal/tracing"
)

type fetcher interface {
	Fetch(ctx context.Context, base string, date time.Time) (xrates.Table, error)
}

// Runtime holds the components of one run and the resources to release after it.
type Runtime struct {
	conf    *config.Service
	closers []func() error

	Storage rates.SeriesStorage
	Updater *rates.Updater
}

func New(ctx context.Context, conf *config.Service) (*Runtime, error) {
	logger.Info("Runtime init - start", zap.String("backend", conf.App().Backend()))
	r := &Runtime{conf: conf}

	tracer, err := tracing.Init(conf.Tracing())
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, tracer.Close)

	codes := currency.DefaultCodeMap()
	if _, ok := codes.Name(conf.App().BaseCurrency()); !ok {
		r.Close()
		return nil, errors.Errorf("base currency %s is not served by the rates source", conf.App().BaseCurrency())
	}

	r.Storage, err = r.openStorage(ctx)
	if err != nil {
		r.Close()
		return nil, err
	}

	notifiers, err := r.buildNotifiers()
	if err != nil {
		r.Close()
		return nil, err
	}
	r.Updater = rates.NewUpdater(r.Storage, r.buildFetcher(codes), rates.NewReshaper(codes), conf.App(), notifiers...)

	logger.Info("Runtime init - end")
	return r, nil
}

// Backfiller writes year files as local CSVs under the configured directory.
func (r *Runtime) Backfiller() *rates.Backfiller {
	return rates.NewBackfiller(r.Updater, r.conf.App().BackfillDir(), func(path string) rates.SeriesStorage {
		return storage.NewFileStorage(path)
	})
}

// Close pushes metrics when configured and releases every resource, most recent first.
func (r *Runtime) Close() {
	if r.conf.Metrics().Enabled() {
		if err := rates.PushMetrics(r.conf.Metrics().Pushgateway(), r.conf.Metrics().Job()); err != nil {
			logger.Error("failed to push metrics", zap.Error(err))
		}
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			logger.Error("failed to release resource", zap.Error(err))
		}
	}
	r.closers = nil
}

func (r *Runtime) buildFetcher(codes currency.CodeMap) fetcher {
	client := xrates.New(r.conf.XRates(), codes)
	if !r.conf.Memcached().Enabled() {
		return client
	}

	mc, err := cache.NewMemcache(r.conf.Memcached())
	if err != nil {
		logger.Warn("memcached unavailable, fetching without cache", zap.Error(err))
		return client
	}
	return cache.NewRatesCache(mc, client, r.conf.Memcached().Expiration())
}

func (r *Runtime) openStorage(ctx context.Context) (rates.SeriesStorage, error) {
	switch r.conf.App().Backend() {
	case config.BackendFile:
		return storage.NewFileStorage(r.conf.App().DataFile()), nil
	case config.BackendS3:
		client, err := storage.NewS3Client(ctx, r.conf.S3())
		if err != nil {
			return nil, err
		}
		s, err := storage.NewS3Storage(client, r.conf.S3())
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, s.Close)
		return s, nil
	case config.BackendPostgres:
		s, err := storage.NewPostgresStorage(r.conf.Postgres(), r.conf.App().BaseCurrency())
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, s.Close)
		return s, nil
	case config.BackendMemory:
		return storage.NewMemoryStorage(), nil
	}
	return nil, errors.Wrap(config.ErrUnknownBackend, r.conf.App().Backend())
}

func (r *Runtime) buildNotifiers() ([]rates.Notifier, error) {
	var notifiers []rates.Notifier
	if r.conf.Kafka().Enabled() {
		producer, err := kafka.NewProducer(r.conf.Kafka())
		if err != nil {
			return nil, errors.Wrap(err, "init kafka producer")
		}
		r.closers = append(r.closers, closeFunc(producer.Close))
		notifiers = append(notifiers, producer)
	}
	if r.conf.Telegram().Enabled() {
		client, err := tg.New(r.conf.Telegram())
		if err != nil {
			return nil, errors.Wrap(err, "init telegram client")
		}
		notifiers = append(notifiers, client)
	}
	return notifiers, nil
}

func closeFunc(f func()) func() error {
	return func() error {
		f()
		return nil
	}
}
