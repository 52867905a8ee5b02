package rates

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mathoholic/exchange-updater/internal/clients/xrates"
	"github.com/Mathoholic/exchange-updater/internal/entity/currency"
	"github.com/Mathoholic/exchange-updater/internal/entity/series"
)

type fakeStorage struct {
	series  *series.Series
	loadErr error
	saved   int
}

func (s *fakeStorage) Load(_ context.Context) (*series.Series, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	copied := series.New()
	if s.series != nil {
		copied.Merge(s.series)
	}
	return copied, nil
}

func (s *fakeStorage) Save(_ context.Context, ser *series.Series) error {
	s.saved++
	s.series = ser
	return nil
}

type fakeFetcher struct {
	tables map[string]xrates.Table
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, base string, date time.Time) (xrates.Table, error) {
	key := date.Format(series.DateLayout)
	f.calls = append(f.calls, base+"@"+key)
	table, ok := f.tables[key]
	if !ok {
		return nil, errors.New("connection reset")
	}
	return table, nil
}

type fakeNotifier struct {
	summaries []Summary
}

func (n *fakeNotifier) NotifyUpdate(_ context.Context, summary Summary) error {
	n.summaries = append(n.summaries, summary)
	return nil
}

type testConfig struct {
	healWindow int
}

func (c testConfig) BaseCurrency() string      { return currency.USD }
func (c testConfig) Epoch() time.Time          { return date(2024, 1, 1) }
func (c testConfig) FetchDelay() time.Duration { return time.Second }
func (c testConfig) HealWindowDays() int       { return c.healWindow }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var usable = xrates.Table{"Euro": 0.91, "Japanese Yen": 141.2}

func seriesWith(t *testing.T, dates ...string) *series.Series {
	t.Helper()
	s := series.New()
	for _, d := range dates {
		require.NoError(t, s.Append(series.Row{Date: d, Rates: map[string]float64{"EUR": 0.9}}))
	}
	return s
}

type harness struct {
	updater  *Updater
	storage  *fakeStorage
	fetcher  *fakeFetcher
	notifier *fakeNotifier
	sleeps   int
}

func newHarness(t *testing.T, stored *series.Series, tables map[string]xrates.Table, today time.Time, healWindow int) *harness {
	t.Helper()
	h := &harness{
		storage:  &fakeStorage{series: stored},
		fetcher:  &fakeFetcher{tables: tables},
		notifier: &fakeNotifier{},
	}
	h.updater = NewUpdater(h.storage, h.fetcher, NewReshaper(currency.DefaultCodeMap()),
		testConfig{healWindow: healWindow}, h.notifier)
	h.updater.clock = func() time.Time { return today.Add(13 * time.Hour) }
	h.updater.sleep = func(ctx context.Context, _ time.Duration) error {
		h.sleeps++
		return ctx.Err()
	}
	return h
}

func Test_OnGapWithOneFailure_ShouldAddFetchedAndSkipFailed(t *testing.T) {
	h := newHarness(t, seriesWith(t, "2024-01-01"),
		map[string]xrates.Table{"2024-01-02": usable}, date(2024, 1, 3), 0)

	summary, err := h.updater.Update(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"USD@2024-01-02", "USD@2024-01-03"}, h.fetcher.calls)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, summary.Missing)
	assert.Equal(t, []string{"2024-01-02"}, summary.Added)
	assert.Equal(t, []string{"2024-01-03"}, summary.Skipped)
	assert.Equal(t, "2024-01-02", summary.Latest)
	assert.True(t, summary.Saved)
	assert.Equal(t, 1, h.sleeps)

	assert.Equal(t, 1, h.storage.saved)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, h.storage.series.Dates())
	row, _ := h.storage.series.Row("2024-01-02")
	assert.Equal(t, map[string]float64{"EUR": 0.91, "JPY": 141.2}, row.Rates)
	assert.Len(t, h.notifier.summaries, 1)
}

func Test_OnEmptyStorage_ShouldStartAtEpoch(t *testing.T) {
	h := newHarness(t, nil, map[string]xrates.Table{
		"2024-01-01": usable,
		"2024-01-02": usable,
		"2024-01-03": usable,
	}, date(2024, 1, 3), 30)

	summary, err := h.updater.Update(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"USD@2024-01-01", "USD@2024-01-02", "USD@2024-01-03"}, h.fetcher.calls)
	assert.Len(t, summary.Added, 3)
	assert.Equal(t, 3, h.storage.series.Len())
}

func Test_OnUpToDateSeries_ShouldNotFetchOrSave(t *testing.T) {
	h := newHarness(t, seriesWith(t, "2024-01-02", "2024-01-03"), nil, date(2024, 1, 3), 0)

	summary, err := h.updater.Update(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.NoOp)
	assert.Equal(t, "2024-01-03", summary.Latest)
	assert.Empty(t, h.fetcher.calls)
	assert.Zero(t, h.storage.saved)
	assert.Empty(t, h.notifier.summaries)
}

func Test_OnAllFetchesFailing_ShouldNotSave(t *testing.T) {
	h := newHarness(t, seriesWith(t, "2024-01-01"), nil, date(2024, 1, 3), 0)

	summary, err := h.updater.Update(context.Background())
	require.NoError(t, err)

	assert.Len(t, h.fetcher.calls, 2)
	assert.Empty(t, summary.Added)
	assert.False(t, summary.Saved)
	assert.Zero(t, h.storage.saved)
}

func Test_OnOnlyUnmappedNames_ShouldSkipEmptyRow(t *testing.T) {
	h := newHarness(t, seriesWith(t, "2024-01-02"),
		map[string]xrates.Table{"2024-01-03": {"Atlantean Drachma": 4.2}}, date(2024, 1, 3), 0)

	summary, err := h.updater.Update(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-03"}, summary.Skipped)
	assert.Zero(t, h.storage.saved)
}

func Test_OnInternalGapInsideHealWindow_ShouldRetryIt(t *testing.T) {
	h := newHarness(t, seriesWith(t, "2024-01-01", "2024-01-03"),
		map[string]xrates.Table{"2024-01-02": usable}, date(2024, 1, 3), 5)

	summary, err := h.updater.Update(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"USD@2024-01-02"}, h.fetcher.calls)
	assert.Equal(t, []string{"2024-01-02"}, summary.Added)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, h.storage.series.Dates())
}

func Test_OnInternalGapOutsideWindow_ShouldNotRetryIt(t *testing.T) {
	h := newHarness(t, seriesWith(t, "2024-01-01", "2024-01-03"), nil, date(2024, 1, 3), 0)

	summary, err := h.updater.Update(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.NoOp)
}

func Test_OnLoadError_ShouldFailWithoutFetching(t *testing.T) {
	h := newHarness(t, nil, nil, date(2024, 1, 3), 0)
	h.storage.loadErr = errors.New("access denied")

	_, err := h.updater.Update(context.Background())
	assert.Error(t, err)
	assert.Empty(t, h.fetcher.calls)
}

func Test_OnCancelledContext_ShouldAbortWithoutSaving(t *testing.T) {
	h := newHarness(t, nil, map[string]xrates.Table{"2024-01-01": usable}, date(2024, 1, 3), 0)
	ctx, cancel := context.WithCancel(context.Background())
	h.updater.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	summary, err := h.updater.Update(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"2024-01-01"}, summary.Added)
	assert.Zero(t, h.storage.saved)
}

func Test_OnSleepContext_ShouldReturnWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleepContext(ctx, time.Minute)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), time.Second)
}
