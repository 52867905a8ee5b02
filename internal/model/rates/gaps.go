package rates

import (
	"time"

	"github.com/jinzhu/now"

	"github.com/Mathoholic/exchange-updater/internal/entity/series"
)

// MissingDates lists, in ascending order, the days up to today that the series lacks.
// An empty series is filled from epoch. Otherwise candidates start healWindowDays before
// the latest known date, but never before the first one, so internal gaps inside the
// window are retried on every run.
func MissingDates(s *series.Series, epoch, today time.Time, healWindowDays int) []time.Time {
	start := day(epoch)
	if first, ok := s.First(); ok {
		latest, _ := s.Latest()
		start = latest.AddDate(0, 0, -healWindowDays)
		if start.Before(first) {
			start = first
		}
	}
	return MissingBetween(s, start, today)
}

// MissingBetween lists the days in [from, to] that have no row in the series.
func MissingBetween(s *series.Series, from, to time.Time) []time.Time {
	var missing []time.Time
	for d, end := day(from), day(to); !d.After(end); d = d.AddDate(0, 0, 1) {
		if !s.Has(d.Format(series.DateLayout)) {
			missing = append(missing, d)
		}
	}
	return missing
}

// day returns the calendar date of t, in t's location, as midnight UTC.
func day(t time.Time) time.Time {
	b := now.With(t).BeginningOfDay()
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDates(dates []time.Time) []string {
	res := make([]string, 0, len(dates))
	for _, d := range dates {
		res = append(res, d.Format(series.DateLayout))
	}
	return res
}
