package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

// Supertrend is one band calculator: it produces a boolean trend flag and a
// ratcheting support/resistance band per bar from an ATR envelope around
// the high/low midpoint.
type Supertrend struct {
	period     int
	multiplier float64
}

// NewSupertrend creates a band calculator for the given parameter tuple.
func NewSupertrend(params types.TrendParams) (*Supertrend, error) {
	if params.Period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"period must be a positive integer, got %d", params.Period)
	}

	if params.Multiplier <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidMultiplier,
			"multiplier must be a positive number, got %f", params.Multiplier)
	}

	return &Supertrend{
		period:     params.Period,
		multiplier: params.Multiplier,
	}, nil
}

// bandState is the carried state of the trend walk: direction plus the
// final bands of the previous bar (the band opposite the direction is
// already cleared).
type bandState struct {
	uptrend bool
	lower   optional.Option[float64]
	upper   optional.Option[float64]
}

// Compute runs the trend state machine left to right over the series.
// Short series never fail: bars without a defined ATR carry undefined
// bands and a best-effort trend flag.
func (s *Supertrend) Compute(series types.PriceSeries) []types.TrendReading {
	n := series.Len()
	readings := make([]types.TrendReading, 0, n)

	if n == 0 {
		return readings
	}

	atr := ATRSeries(series, s.period)
	lowerCand := make([]optional.Option[float64], n)
	upperCand := make([]optional.Option[float64], n)

	for i, bar := range series.Bars {
		if atr[i].IsNone() {
			lowerCand[i] = optional.None[float64]()
			upperCand[i] = optional.None[float64]()

			continue
		}

		mid := (bar.High + bar.Low) / 2
		envelope := s.multiplier * atr[i].Unwrap()
		upperCand[i] = optional.Some(mid + envelope)
		lowerCand[i] = optional.Some(mid - envelope)
	}

	// Bar 0 starts up-trending with the lower candidate as its band.
	state := bandState{
		uptrend: true,
		lower:   lowerCand[0],
		upper:   optional.None[float64](),
	}
	readings = append(readings, readingAt(series.Bars[0], state))

	for i := 1; i < n; i++ {
		state = nextBandState(state, series.Bars[i].Close, lowerCand[i], upperCand[i])
		readings = append(readings, readingAt(series.Bars[i], state))
	}

	return readings
}

// nextBandState consumes (previous state, current bar) and produces the
// new state. Crossing the previous bar's band flips the direction; while
// the direction persists the active band ratchets: it only tightens toward
// price, never loosens.
func nextBandState(prev bandState, close float64, lowerCand, upperCand optional.Option[float64]) bandState {
	next := bandState{
		uptrend: prev.uptrend,
		lower:   lowerCand,
		upper:   upperCand,
	}

	switch {
	case prev.upper.IsSome() && close > prev.upper.Unwrap():
		next.uptrend = true
	case prev.lower.IsSome() && close < prev.lower.Unwrap():
		next.uptrend = false
	default:
		if next.uptrend && lowerCand.IsSome() && prev.lower.IsSome() &&
			lowerCand.Unwrap() < prev.lower.Unwrap() {
			next.lower = prev.lower
		}

		if !next.uptrend && upperCand.IsSome() && prev.upper.IsSome() &&
			upperCand.Unwrap() > prev.upper.Unwrap() {
			next.upper = prev.upper
		}
	}

	// The band opposite the direction is undefined for this bar.
	if next.uptrend {
		next.upper = optional.None[float64]()
	} else {
		next.lower = optional.None[float64]()
	}

	return next
}

func readingAt(bar types.Bar, state bandState) types.TrendReading {
	return types.TrendReading{
		Date:      bar.Date,
		Uptrend:   state.uptrend,
		LowerBand: state.lower,
		UpperBand: state.upper,
	}
}
