package rates

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jinzhu/now"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Mathoholic/exchange-updater/internal/entity/series"
	"github.com/Mathoholic/exchange-updater/internal/logger"
)

const (
	yearFileFormat = "exchange_rates_%d.csv"
	combinedFile   = "exchange_rates_all.csv"
)

var ErrBadYearRange = errors.New("bad year range")

// StorageOpener returns the storage that keeps the series at path.
type StorageOpener func(path string) SeriesStorage

// BackfillSummary counts the rows added per year.
type BackfillSummary struct {
	Added    map[int]int
	Combined int
}

// Backfiller fills whole calendar years, one file per year, and writes a combined file.
// Re-running resumes: dates already present in a year file are not fetched again.
type Backfiller struct {
	updater *Updater
	dir     string
	open    StorageOpener
}

func NewBackfiller(updater *Updater, dir string, open StorageOpener) *Backfiller {
	return &Backfiller{
		updater: updater,
		dir:     dir,
		open:    open,
	}
}

func (b *Backfiller) Run(ctx context.Context, fromYear, toYear int) (BackfillSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "backfill")
	defer span.Finish()

	summary := BackfillSummary{Added: make(map[int]int)}
	if fromYear > toYear {
		return summary, errors.Wrapf(ErrBadYearRange, "%d > %d", fromYear, toYear)
	}

	today := day(b.updater.clock())
	all := series.New()

	for year := fromYear; year <= toYear; year++ {
		begin := now.With(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)).BeginningOfYear()
		if begin.After(today) {
			break
		}
		end := day(now.With(begin).EndOfYear())
		if end.After(today) {
			end = today
		}

		s, added, err := b.fillYear(ctx, year, begin, end)
		if err != nil {
			return summary, errors.Wrapf(err, "year %d", year)
		}
		summary.Added[year] = added
		all.Merge(s)
	}

	if all.Len() == 0 {
		logger.Warn("Backfill produced no data")
		return summary, nil
	}
	if err := b.open(filepath.Join(b.dir, combinedFile)).Save(ctx, all); err != nil {
		return summary, errors.Wrap(err, "save combined series")
	}
	summary.Combined = all.Len()
	setLatest(all)
	logger.Info("Saved combined data", zap.Int("rows", all.Len()))
	return summary, nil
}

func (b *Backfiller) fillYear(ctx context.Context, year int, begin, end time.Time) (*series.Series, int, error) {
	storage := b.open(filepath.Join(b.dir, fmt.Sprintf(yearFileFormat, year)))

	s, err := storage.Load(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "load series")
	}

	missing := MissingBetween(s, begin, end)
	logger.Info("Backfilling year", zap.Int("year", year), zap.Int("missing", len(missing)))
	if len(missing) == 0 {
		return s, 0, nil
	}

	res, err := b.updater.Fill(ctx, s, missing)
	if err != nil {
		return nil, 0, err
	}
	if len(res.Added) == 0 {
		return s, 0, nil
	}

	if err = storage.Save(ctx, s); err != nil {
		return nil, 0, errors.Wrap(err, "save series")
	}
	logger.Info("Saved data for year",
		zap.Int("year", year),
		zap.Int("added", len(res.Added)),
		zap.Int("skipped", len(res.Skipped)))
	return s, len(res.Added), nil
}
