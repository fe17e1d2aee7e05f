package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

// DefaultTrendParams returns the parameter tuples the ensemble ships with.
func DefaultTrendParams() []types.TrendParams {
	return []types.TrendParams{
		{Period: 12, Multiplier: 3},
		{Period: 10, Multiplier: 1},
		{Period: 11, Multiplier: 2},
	}
}

// Ensemble combines several independent Supertrend calculators over one
// series: the ensemble trend is the AND of all member trends, and each
// band is the mean of the defined member bands on bars sharing the
// ensemble direction.
type Ensemble struct {
	members []*Supertrend
}

// NewEnsemble creates an ensemble from the given parameter tuples.
func NewEnsemble(params []types.TrendParams) (*Ensemble, error) {
	if len(params) == 0 {
		return nil, errors.New(errors.ErrCodeMissingParameter,
			"ensemble requires at least one (period, multiplier) tuple")
	}

	members := make([]*Supertrend, 0, len(params))

	for _, p := range params {
		member, err := NewSupertrend(p)
		if err != nil {
			return nil, err
		}

		members = append(members, member)
	}

	return &Ensemble{members: members}, nil
}

// Compute runs every member over the series and merges the readings.
func (e *Ensemble) Compute(series types.PriceSeries) types.EnsembleTrend {
	n := series.Len()
	memberReadings := make([][]types.TrendReading, len(e.members))

	for i, member := range e.members {
		memberReadings[i] = member.Compute(series)
	}

	combined := make([]types.TrendReading, 0, n)

	for i := 0; i < n; i++ {
		uptrend := true
		for _, readings := range memberReadings {
			uptrend = uptrend && readings[i].Uptrend
		}

		lower := meanBand(memberReadings, i, func(r types.TrendReading) optional.Option[float64] {
			return r.LowerBand
		})
		upper := meanBand(memberReadings, i, func(r types.TrendReading) optional.Option[float64] {
			return r.UpperBand
		})

		// Only the direction-matching band survives the merge.
		if uptrend {
			upper = optional.None[float64]()
		} else {
			lower = optional.None[float64]()
		}

		combined = append(combined, types.TrendReading{
			Date:      series.Bars[i].Date,
			Uptrend:   uptrend,
			LowerBand: lower,
			UpperBand: upper,
		})
	}

	return types.EnsembleTrend{
		Ticker:   series.Ticker,
		Readings: combined,
	}
}

func meanBand(memberReadings [][]types.TrendReading, i int, band func(types.TrendReading) optional.Option[float64]) optional.Option[float64] {
	var sum float64

	defined := 0

	for _, readings := range memberReadings {
		if v := band(readings[i]); v.IsSome() {
			sum += v.Unwrap()
			defined++
		}
	}

	if defined == 0 {
		return optional.None[float64]()
	}

	return optional.Some(sum / float64(defined))
}
