package series

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrNoDateColumn = errors.New("missing date column")

// ReadCSV parses the flat-file form `date,<code>,...`. Empty cells mean no rate for that day.
// An empty input yields an empty series.
func ReadCSV(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	s := New()
	header, err := reader.Read()
	if err == io.EOF {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	dateIdx := -1
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
		if header[i] == DateColumn {
			dateIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, ErrNoDateColumn
	}

	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read line %d", line)
		}
		if dateIdx >= len(rec) {
			return nil, errors.Errorf("line %d: no date value", line)
		}

		row := Row{Date: strings.TrimSpace(rec[dateIdx]), Rates: make(map[string]float64)}
		if _, err := time.Parse(DateLayout, row.Date); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		for i, cell := range rec {
			cell = strings.TrimSpace(cell)
			if i == dateIdx || i >= len(header) || cell == "" {
				continue
			}
			rate, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d column %s", line, header[i])
			}
			row.Rates[header[i]] = rate
		}
		if err := s.Append(row); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
	}
	return s, nil
}

// WriteCSV writes the series in ascending date order. Rates use the shortest
// representation that parses back to the same value, so rewriting is byte-stable.
func WriteCSV(w io.Writer, s *Series) error {
	writer := csv.NewWriter(w)
	cols := s.Columns()

	header := append([]string{DateColumn}, cols...)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}

	rec := make([]string, len(header))
	for _, row := range s.Rows() {
		rec[0] = row.Date
		for i, code := range cols {
			rec[i+1] = ""
			if rate, ok := row.Rates[code]; ok {
				rec[i+1] = strconv.FormatFloat(rate, 'f', -1, 64)
			}
		}
		if err := writer.Write(rec); err != nil {
			return errors.Wrapf(err, "write %s", row.Date)
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "flush csv")
}
