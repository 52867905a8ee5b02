package rates

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Mathoholic/exchange-updater/internal/clients/xrates"
	"github.com/Mathoholic/exchange-updater/internal/entity/series"
	"github.com/Mathoholic/exchange-updater/internal/logger"
)

type SeriesStorage interface {
	Load(ctx context.Context) (*series.Series, error)
	Save(ctx context.Context, s *series.Series) error
}

type tableFetcher interface {
	Fetch(ctx context.Context, base string, date time.Time) (xrates.Table, error)
}

// Notifier is told about every run that attempted to fetch something.
type Notifier interface {
	NotifyUpdate(ctx context.Context, summary Summary) error
}

type config interface {
	BaseCurrency() string
	Epoch() time.Time
	FetchDelay() time.Duration
	HealWindowDays() int
}

// Summary describes the outcome of one Update run.
type Summary struct {
	Base    string
	Missing []string
	Added   []string
	Skipped []string
	Latest  string
	NoOp    bool
	Saved   bool
}

type FillResult struct {
	Added   []string
	Skipped []string
}

type Updater struct {
	storage      SeriesStorage
	fetcher      tableFetcher
	reshaper     *Reshaper
	notifiers    []Notifier
	baseCurrency string
	epoch        time.Time
	fetchDelay   time.Duration
	healWindow   int

	clock func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewUpdater(storage SeriesStorage, fetcher tableFetcher, reshaper *Reshaper, config config, notifiers ...Notifier) *Updater {
	return &Updater{
		storage:      storage,
		fetcher:      fetcher,
		reshaper:     reshaper,
		notifiers:    notifiers,
		baseCurrency: config.BaseCurrency(),
		epoch:        config.Epoch(),
		fetchDelay:   config.FetchDelay(),
		healWindow:   config.HealWindowDays(),
		clock:        time.Now,
		sleep:        sleepContext,
	}
}

// Update loads the persisted series, fetches every missing date up to today and saves
// the merged result. Nothing is fetched or written when no date is missing.
func (u *Updater) Update(ctx context.Context) (Summary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "updateRates")
	defer span.Finish()
	defer observeRun(time.Now())

	summary := Summary{Base: u.baseCurrency}

	s, err := u.storage.Load(ctx)
	if err != nil {
		ext.Error.Set(span, true)
		return summary, errors.Wrap(err, "load series")
	}

	missing := MissingDates(s, u.epoch, u.clock(), u.healWindow)
	summary.Missing = formatDates(missing)
	if len(missing) == 0 {
		summary.NoOp = true
		summary.Latest = latestDate(s)
		logger.Info("No missing dates", zap.String("latest", summary.Latest))
		return summary, nil
	}
	logger.Info("Missing dates found",
		zap.Int("count", len(missing)),
		zap.String("from", summary.Missing[0]),
		zap.String("to", summary.Missing[len(missing)-1]))

	res, err := u.Fill(ctx, s, missing)
	summary.Added, summary.Skipped = res.Added, res.Skipped
	if err != nil {
		ext.Error.Set(span, true)
		return summary, err
	}
	summary.Latest = latestDate(s)

	if len(res.Added) == 0 {
		logger.Warn("No rows fetched, series left unchanged", zap.Int("skipped", len(res.Skipped)))
	} else {
		if err = u.storage.Save(ctx, s); err != nil {
			ext.Error.Set(span, true)
			return summary, errors.Wrap(err, "save series")
		}
		summary.Saved = true
		setLatest(s)
		logger.Info("Updated data",
			zap.String("latest", summary.Latest),
			zap.Int("added", len(res.Added)),
			zap.Int("skipped", len(res.Skipped)))
	}

	u.notify(ctx, summary)
	return summary, nil
}

// Fill fetches the given dates in order and appends every usable row to s.
// A date that fails to fetch or yields no mapped rates is skipped. Fetches are spaced
// by the configured delay; cancelling ctx aborts the loop.
func (u *Updater) Fill(ctx context.Context, s *series.Series, dates []time.Time) (FillResult, error) {
	var res FillResult
	for i, date := range dates {
		if i > 0 {
			if err := u.sleep(ctx, u.fetchDelay); err != nil {
				return res, errors.Wrap(err, "fill interrupted")
			}
		}

		key := date.Format(series.DateLayout)
		if u.fillDate(ctx, s, date) {
			res.Added = append(res.Added, key)
		} else {
			res.Skipped = append(res.Skipped, key)
		}
	}
	return res, nil
}

func (u *Updater) fillDate(ctx context.Context, s *series.Series, date time.Time) bool {
	key := date.Format(series.DateLayout)

	span, ctx := opentracing.StartSpanFromContext(ctx, "fillDate")
	defer span.Finish()
	span.SetTag("date", key)

	start := time.Now()
	table, err := u.fetcher.Fetch(ctx, u.baseCurrency, date)
	observeFetch(time.Since(start), err != nil)
	if err != nil {
		ext.Error.Set(span, true)
		countDate(outcomeFetchFailed)
		logger.Warn("Failed to fetch rates, skipping date", zap.String("date", key), zap.Error(err))
		return false
	}

	row := u.reshaper.Reshape(table, date)
	if row.Empty() {
		countDate(outcomeEmpty)
		logger.Warn("No usable rates, skipping date", zap.String("date", key), zap.Int("raw", len(table)))
		return false
	}

	if err = s.Append(row); err != nil {
		countDate(outcomeRejected)
		logger.Warn("Row rejected, skipping date", zap.String("date", key), zap.Error(err))
		return false
	}

	countDate(outcomeAdded)
	logger.Info("Fetched rates", zap.String("date", key), zap.Int("currencies", len(row.Rates)))
	return true
}

func (u *Updater) notify(ctx context.Context, summary Summary) {
	for _, n := range u.notifiers {
		if err := n.NotifyUpdate(ctx, summary); err != nil {
			logger.Error("failed to notify about update", zap.Error(err))
		}
	}
}

func latestDate(s *series.Series) string {
	latest, ok := s.Latest()
	if !ok {
		return ""
	}
	return latest.Format(series.DateLayout)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
