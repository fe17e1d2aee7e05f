package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/robotrader-lab/robotrader/internal/indicator"
	"github.com/robotrader-lab/robotrader/internal/logger"
	"github.com/robotrader-lab/robotrader/internal/market"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

// TrendAnalysis is the merged verdict of the trend ensemble and the MACD
// crossover engine for one ticker over one evaluation window.
//
// A day is a buy day when the ensemble is in an uptrend or the MACD fired a
// buy crossover on that day. A day is a sell day when the ensemble is not in
// an uptrend or the MACD fired a sell crossover. The two sets can overlap;
// callers that act on both give buys precedence.
type TrendAnalysis struct {
	Ticker   string
	BuyDays  map[string]bool
	SellDays map[string]bool
}

// ShouldBuy reports whether day was flagged as a buy day.
func (a TrendAnalysis) ShouldBuy(day string) bool {
	return a.BuyDays[day]
}

// ShouldSell reports whether day was flagged as a sell day.
func (a TrendAnalysis) ShouldSell(day string) bool {
	return a.SellDays[day]
}

// Aggregator evaluates both signal engines over a shared price series and
// merges their outputs into per-day buy and sell sets.
type Aggregator struct {
	provider market.PriceSeriesProvider
	ensemble *indicator.Ensemble
	macd     *indicator.MACD
	log      *logger.Logger
}

// NewAggregator builds an aggregator with the given engines. Pass the
// default engines from the indicator package for the standard setup.
func NewAggregator(provider market.PriceSeriesProvider, ensemble *indicator.Ensemble, macd *indicator.MACD, log *logger.Logger) (*Aggregator, error) {
	if provider == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "price series provider is required")
	}

	if ensemble == nil || macd == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "both signal engines are required")
	}

	return &Aggregator{
		provider: provider,
		ensemble: ensemble,
		macd:     macd,
		log:      log,
	}, nil
}

// EvaluateTrends fetches the ticker's bars over [start, end] and runs both
// engines on the same series. Both engines see the full window so their
// warm-up periods line up with the same bars.
func (a *Aggregator) EvaluateTrends(ctx context.Context, ticker string, start, end time.Time) (TrendAnalysis, error) {
	series, err := a.provider.GetBars(ctx, ticker, start, end)
	if err != nil {
		return TrendAnalysis{}, err
	}

	if err := series.Validate(); err != nil {
		return TrendAnalysis{}, err
	}

	trend := a.ensemble.Compute(series)
	momentum := a.macd.Compute(series)

	analysis := TrendAnalysis{
		Ticker:   ticker,
		BuyDays:  make(map[string]bool, series.Len()),
		SellDays: make(map[string]bool, series.Len()),
	}

	for i := range series.Bars {
		day := series.Bars[i].Day()
		uptrend := trend.Readings[i].Uptrend

		if uptrend || momentum[i].BuyEvent {
			analysis.BuyDays[day] = true
		}

		if !uptrend || momentum[i].SellEvent {
			analysis.SellDays[day] = true
		}
	}

	a.log.Debug("evaluated trends",
		zap.String("ticker", ticker),
		zap.Int("bars", series.Len()),
		zap.Int("buy_days", len(analysis.BuyDays)),
		zap.Int("sell_days", len(analysis.SellDays)),
	)

	return analysis, nil
}
