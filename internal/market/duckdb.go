package market

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/robotrader-lab/robotrader/internal/logger"
	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

// BarStore is a DuckDB-backed bar archive. It implements both
// PriceSeriesProvider and TradingCalendar: session dates are the distinct
// days for which bars were stored, which makes a fully-downloaded store
// the trading calendar of its own date range.
type BarStore struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	log *logger.Logger
}

// OpenBarStore opens (or creates) a bar store at path. Use ":memory:" for
// an in-memory store.
func OpenBarStore(path string, log *logger.Logger) (*BarStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, "failed to open bar store", err)
	}

	store := &BarStore{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log,
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *BarStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			id TEXT,
			ticker TEXT,
			day TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			adj_close DOUBLE,
			volume DOUBLE,
			PRIMARY KEY (ticker, day)
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, "failed to create bars table", err)
	}

	return nil
}

// WriteSeries stores all bars of a series inside one transaction.
// Existing (ticker, day) rows are replaced.
func (s *BarStore) WriteSeries(series types.PriceSeries) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO bars (id, ticker, day, open, high, low, close, adj_close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare insert", err)
	}

	for _, bar := range series.Bars {
		if _, err := stmt.Exec(
			uuid.New().String(), series.Ticker, bar.Day(),
			bar.Open, bar.High, bar.Low, bar.Close, bar.AdjClose, bar.Volume,
		); err != nil {
			stmt.Close()
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err,
				"failed to insert bar %s %s", series.Ticker, bar.Day())
		}
	}

	stmt.Close()

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit bars", err)
	}

	return nil
}

// GetBars implements PriceSeriesProvider.
func (s *BarStore) GetBars(ctx context.Context, ticker string, start, end time.Time) (types.PriceSeries, error) {
	query := s.sq.
		Select("day", "open", "high", "low", "close", "adj_close", "volume").
		From("bars").
		Where(squirrel.Eq{"ticker": ticker}).
		Where(squirrel.GtOrEq{"day": start.Format(types.DateLayout)}).
		Where(squirrel.LtOrEq{"day": end.Format(types.DateLayout)}).
		OrderBy("day")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err)
	}
	defer rows.Close()

	series := types.PriceSeries{Ticker: ticker}

	for rows.Next() {
		var day string

		var bar types.Bar

		if err := rows.Scan(&day, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.AdjClose, &bar.Volume); err != nil {
			return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		bar.Date, err = types.ParseDay(day)
		if err != nil {
			return types.PriceSeries{}, err
		}

		series.Bars = append(series.Bars, bar)
	}

	if err := rows.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate bars", err)
	}

	if len(series.Bars) == 0 {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeDataUnavailable,
			"no stored bars for %s between %s and %s",
			ticker, start.Format(types.DateLayout), end.Format(types.DateLayout))
	}

	return series, nil
}

// GetCurrentPrice implements PriceSeriesProvider. For an archive the
// current price is the most recent stored close.
func (s *BarStore) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	query := s.sq.
		Select("close").
		From("bars").
		Where(squirrel.Eq{"ticker": ticker}).
		OrderBy("day DESC").
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var price float64

	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, errors.Newf(errors.ErrCodeDataUnavailable, "no stored bars for %s", ticker)
	}

	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query current price", err)
	}

	return price, nil
}

// GetOpeningPrice implements PriceSeriesProvider.
func (s *BarStore) GetOpeningPrice(ctx context.Context, ticker string, day string) (float64, error) {
	if _, err := types.ParseDay(day); err != nil {
		return 0, err
	}

	query := s.sq.
		Select("open").
		From("bars").
		Where(squirrel.Eq{"ticker": ticker, "day": day})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var open float64

	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&open)
	if err == sql.ErrNoRows {
		return 0, errors.Newf(errors.ErrCodeDataUnavailable,
			"no stored bar for %s on %s", ticker, day)
	}

	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query opening price", err)
	}

	return open, nil
}

// SessionDates implements TradingCalendar.
func (s *BarStore) SessionDates(ctx context.Context, start, end string) ([]string, error) {
	if _, err := types.ParseDay(start); err != nil {
		return nil, err
	}

	if _, err := types.ParseDay(end); err != nil {
		return nil, err
	}

	query := s.sq.
		Select("DISTINCT day").
		From("bars").
		Where(squirrel.GtOrEq{"day": start}).
		Where(squirrel.LtOrEq{"day": end}).
		OrderBy("day")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCalendarUnavailable, "failed to query session dates", err)
	}
	defer rows.Close()

	var days []string

	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan session date", err)
		}

		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate session dates", err)
	}

	return days, nil
}

// Close closes the underlying database.
func (s *BarStore) Close() error {
	return s.db.Close()
}
