package analysis

import (
	"math"

	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

// tradingDaysPerYear is the standard annualization factor for daily returns.
const tradingDaysPerYear = 252

// AnnualizedVolatility returns the annualized volatility of the series as a
// percentage. It is the sample standard deviation of daily log returns of the
// adjusted closes, scaled by the square root of the trading days in a year.
// At least three bars are required to form two returns.
func AnnualizedVolatility(series types.PriceSeries) (float64, error) {
	if series.Len() < 3 {
		return 0, errors.NewInsufficientDataError(3, series.Len(), series.Ticker,
			"not enough bars to compute volatility")
	}

	closes := series.AdjCloses()

	returns := make([]float64, 0, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return 0, errors.Newf(errors.ErrCodeIndicatorCalculation,
				"non-positive adjusted close in %s series", series.Ticker)
		}

		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}

	// Sample variance, so one degree of freedom is consumed by the mean.
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear) * 100, nil
}

// PeriodHigh returns the highest adjusted close of the series.
func PeriodHigh(series types.PriceSeries) (float64, error) {
	if series.Len() == 0 {
		return 0, errors.Newf(errors.ErrCodeDataUnavailable,
			"no bars available for %s", series.Ticker)
	}

	high := series.Bars[0].AdjClose
	for _, bar := range series.Bars[1:] {
		if bar.AdjClose > high {
			high = bar.AdjClose
		}
	}

	return high, nil
}
