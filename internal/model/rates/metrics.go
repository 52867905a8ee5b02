package rates

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Mathoholic/exchange-updater/internal/entity/series"
)

const (
	namespace = "exchange_updater"
	subsystem = "rates"

	outcomeAdded       = "added"
	outcomeFetchFailed = "fetch_failed"
	outcomeEmpty       = "empty"
	outcomeRejected    = "rejected"
)

var (
	histogramFetchTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "histogram_fetch_time_seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		},
		[]string{"error"},
	)

	counterDates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dates_total",
		},
		[]string{"outcome"},
	)

	gaugeRunTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_duration_seconds",
		},
	)

	gaugeLatestDate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "latest_date_timestamp_seconds",
		},
	)
)

func observeFetch(elapsed time.Duration, err bool) {
	histogramFetchTime.
		WithLabelValues(strconv.FormatBool(err)).
		Observe(elapsed.Seconds())
}

func countDate(outcome string) {
	counterDates.WithLabelValues(outcome).Inc()
}

func observeRun(start time.Time) {
	gaugeRunTime.Set(time.Since(start).Seconds())
}

func setLatest(s *series.Series) {
	if latest, ok := s.Latest(); ok {
		gaugeLatestDate.Set(float64(latest.Unix()))
	}
}

// PushMetrics sends the updater's metrics to a Prometheus Pushgateway.
// Batch runs end before a scraper could reach them.
func PushMetrics(url, job string) error {
	err := push.New(url, job).
		Collector(histogramFetchTime).
		Collector(counterDates).
		Collector(gaugeRunTime).
		Collector(gaugeLatestDate).
		Push()
	return errors.Wrap(err, "push metrics")
}
