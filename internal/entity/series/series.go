package series

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

const (
	DateLayout = "2006-01-02"
	DateColumn = "date"
)

var ErrDuplicateDate = errors.New("date already present in series")

// Row is one calendar date of the series with a sparse set of rates keyed by currency code.
type Row struct {
	Date  string
	Rates map[string]float64
}

func (r Row) Empty() bool {
	return len(r.Rates) == 0
}

// Series holds at most one row per date. Rows are always handed out in ascending date order.
type Series struct {
	rows map[string]Row
}

func New() *Series {
	return &Series{rows: make(map[string]Row)}
}

func (s *Series) Len() int {
	return len(s.rows)
}

func (s *Series) Has(date string) bool {
	_, ok := s.rows[date]
	return ok
}

func (s *Series) Row(date string) (Row, bool) {
	r, ok := s.rows[date]
	return r, ok
}

// Append adds a row for a date that is not yet present. Historical rows are never replaced.
func (s *Series) Append(row Row) error {
	if _, err := time.Parse(DateLayout, row.Date); err != nil {
		return errors.Wrapf(err, "append row %q", row.Date)
	}
	if s.Has(row.Date) {
		return errors.Wrap(ErrDuplicateDate, row.Date)
	}
	rates := make(map[string]float64, len(row.Rates))
	for code, rate := range row.Rates {
		rates[code] = rate
	}
	s.rows[row.Date] = Row{Date: row.Date, Rates: rates}
	return nil
}

// Merge appends every row of other whose date is absent and returns how many were added.
func (s *Series) Merge(other *Series) int {
	added := 0
	for _, row := range other.Rows() {
		if s.Has(row.Date) {
			continue
		}
		if err := s.Append(row); err == nil {
			added++
		}
	}
	return added
}

func (s *Series) Dates() []string {
	dates := make([]string, 0, len(s.rows))
	for date := range s.rows {
		dates = append(dates, date)
	}
	// YYYY-MM-DD sorts lexically in date order
	sort.Strings(dates)
	return dates
}

func (s *Series) Rows() []Row {
	dates := s.Dates()
	rows := make([]Row, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, s.rows[date])
	}
	return rows
}

// Columns returns the union of currency codes present in any row, sorted.
func (s *Series) Columns() []string {
	seen := make(map[string]struct{})
	for _, row := range s.rows {
		for code := range row.Rates {
			seen[code] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for code := range seen {
		cols = append(cols, code)
	}
	sort.Strings(cols)
	return cols
}

func (s *Series) First() (time.Time, bool) {
	return s.edge(true)
}

func (s *Series) Latest() (time.Time, bool) {
	return s.edge(false)
}

func (s *Series) edge(first bool) (time.Time, bool) {
	dates := s.Dates()
	if len(dates) == 0 {
		return time.Time{}, false
	}
	date := dates[len(dates)-1]
	if first {
		date = dates[0]
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
