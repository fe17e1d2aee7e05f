package market

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"go.uber.org/zap"

	"github.com/robotrader-lab/robotrader/internal/logger"
	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

const defaultMaxRetries = 3

// PolygonProvider implements PriceSeriesProvider against the Polygon REST
// API. Transient failures are retried with exponential backoff; a day or
// range with no aggregates surfaces as ErrCodeDataUnavailable.
type PolygonProvider struct {
	client     *polygon.Client
	log        *logger.Logger
	maxRetries uint64
}

// NewPolygonProvider creates a provider using the given API key.
func NewPolygonProvider(apiKey string, log *logger.Logger) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	return &PolygonProvider{
		client:     polygon.New(apiKey),
		log:        log,
		maxRetries: defaultMaxRetries,
	}, nil
}

// retry runs op under the provider's bounded-retry policy.
func (p *PolygonProvider) retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.maxRetries), ctx)

	return backoff.Retry(op, policy)
}

// GetBars implements PriceSeriesProvider.
func (p *PolygonProvider) GetBars(ctx context.Context, ticker string, start, end time.Time) (types.PriceSeries, error) {
	series := types.PriceSeries{Ticker: ticker}

	err := p.retry(ctx, func() error {
		params := models.ListAggsParams{
			Ticker:     ticker,
			Multiplier: 1,
			Timespan:   models.Day,
			From:       models.Millis(start),
			To:         models.Millis(end),
		}.WithLimit(50000).WithAdjusted(true)

		bars := make([]types.Bar, 0)
		iter := p.client.ListAggs(ctx, params)

		for iter.Next() {
			agg := iter.Item()
			bars = append(bars, types.Bar{
				Date:     time.Time(agg.Timestamp),
				Open:     agg.Open,
				High:     agg.High,
				Low:      agg.Low,
				Close:    agg.Close,
				AdjClose: agg.Close, // aggregates are requested split-adjusted
				Volume:   agg.Volume,
			})
		}

		if iter.Err() != nil {
			return iter.Err()
		}

		series.Bars = bars

		return nil
	})
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err,
			"failed to list aggregates for %s", ticker)
	}

	if len(series.Bars) == 0 {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeDataUnavailable,
			"no bars for %s between %s and %s",
			ticker, start.Format(types.DateLayout), end.Format(types.DateLayout))
	}

	return series, nil
}

// GetCurrentPrice implements PriceSeriesProvider.
func (p *PolygonProvider) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	var price float64

	err := p.retry(ctx, func() error {
		res, err := p.client.GetLastTrade(ctx, &models.GetLastTradeParams{Ticker: ticker})
		if err != nil {
			return err
		}

		price = res.Results.Price

		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeDataUnavailable, err,
			"no current price for %s", ticker)
	}

	return price, nil
}

// GetOpeningPrice implements PriceSeriesProvider.
func (p *PolygonProvider) GetOpeningPrice(ctx context.Context, ticker string, day string) (float64, error) {
	date, err := types.ParseDay(day)
	if err != nil {
		return 0, err
	}

	var open float64

	err = p.retry(ctx, func() error {
		res, err := p.client.GetDailyOpenCloseAgg(ctx, &models.GetDailyOpenCloseAggParams{
			Ticker: ticker,
			Date:   models.Date(date),
		})
		if err != nil {
			return err
		}

		open = res.Open

		return nil
	})
	if err != nil {
		p.log.Debug("opening price lookup failed",
			zap.String("ticker", ticker),
			zap.String("day", day),
			zap.Error(err),
		)

		return 0, errors.Wrapf(errors.ErrCodeDataUnavailable, err,
			"no opening price for %s on %s", ticker, day)
	}

	return open, nil
}
