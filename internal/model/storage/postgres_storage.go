package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Mathoholic/exchange-updater/internal/entity/series"
	"github.com/Mathoholic/exchange-updater/internal/logger"
)

const (
	dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"
	ratesTable  = "exchange_rates"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type config interface {
	Host() string
	Username() string
	Password() string
	Database() string
}

// PostgresStorage keeps one row per (date, base, currency). Saving never rewrites stored rates.
type PostgresStorage struct {
	db   *sql.DB
	base string
}

func NewPostgresStorage(config config, base string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return &PostgresStorage{db: db, base: base}, nil
}

func (s *PostgresStorage) Load(ctx context.Context) (*series.Series, error) {
	query := psql.Select("date", "currency", "rate").
		From(ratesTable).
		Where(sq.Eq{"base": s.base}).
		OrderBy("date", "currency")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get rates")
	}
	defer func() {
		if rowErr := rows.Close(); rowErr != nil {
			logger.Error("error closing rows", zap.Error(rowErr))
		}
	}()

	byDate := make(map[string]map[string]float64)
	for rows.Next() {
		var (
			date time.Time
			code string
			rate float64
		)
		if err = rows.Scan(&date, &code, &rate); err != nil {
			return nil, errors.Wrap(err, "get rates")
		}
		key := date.Format(series.DateLayout)
		if byDate[key] == nil {
			byDate[key] = make(map[string]float64)
		}
		byDate[key][code] = rate
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "get rates")
	}

	res := series.New()
	for date, rates := range byDate {
		if err = res.Append(series.Row{Date: date, Rates: rates}); err != nil {
			return nil, errors.Wrap(err, "build series")
		}
	}
	return res, nil
}

// Save inserts every rate of the series in one transaction. Rows already stored are kept as they are.
func (s *PostgresStorage) Save(ctx context.Context, ser *series.Series) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "save rates")
	}
	defer func() {
		if txErr := tx.Rollback(); txErr != nil && !errors.Is(txErr, sql.ErrTxDone) {
			logger.Error("error when transaction rollback", zap.Error(txErr))
		}
	}()

	for _, row := range ser.Rows() {
		if err = s.insertRow(ctx, tx, row); err != nil {
			return errors.Wrapf(err, "save rates for %s", row.Date)
		}
	}
	return errors.Wrap(tx.Commit(), "commit rates")
}

func (s *PostgresStorage) insertRow(ctx context.Context, tx *sql.Tx, row series.Row) error {
	if row.Empty() {
		return nil
	}
	query := psql.Insert(ratesTable).
		Columns("date", "base", "currency", "rate").
		Suffix("ON CONFLICT (date, base, currency) DO NOTHING")
	for _, code := range sortedCodes(row.Rates) {
		query = query.Values(row.Date, s.base, code, row.Rates[code])
	}
	_, err := query.RunWith(tx).ExecContext(ctx)
	return err
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func sortedCodes(rates map[string]float64) []string {
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
