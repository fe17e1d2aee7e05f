// Package market defines the external collaborators the trading core
// depends on: historical price series, point-in-time prices, and the
// trading calendar. Implementations live alongside the interfaces; the
// core only ever sees these contracts.
package market

import (
	"context"
	"time"

	"github.com/robotrader-lab/robotrader/internal/types"
)

// PriceSeriesProvider supplies OHLC bars and point-in-time prices for a
// ticker. A lookup with no data must return an error carrying
// errors.ErrCodeDataUnavailable so callers can distinguish "no data" from
// transport failures.
type PriceSeriesProvider interface {
	// GetBars returns the daily bars for ticker between start and end
	// inclusive, in strictly increasing date order.
	GetBars(ctx context.Context, ticker string, start, end time.Time) (types.PriceSeries, error)
	// GetCurrentPrice returns the latest traded price for ticker.
	GetCurrentPrice(ctx context.Context, ticker string) (float64, error)
	// GetOpeningPrice returns the opening price for ticker on the given
	// canonical YYYY-MM-DD day.
	GetOpeningPrice(ctx context.Context, ticker string, day string) (float64, error)
}

// TradingCalendar reports the valid trading sessions of the reference
// exchange.
type TradingCalendar interface {
	// SessionDates returns the ascending, deduplicated list of canonical
	// YYYY-MM-DD session days between start and end inclusive.
	SessionDates(ctx context.Context, start, end string) ([]string, error)
}
