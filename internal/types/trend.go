package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// TrendParams is one (smoothing period, band multiplier) tuple for a single
// band calculator in the trend ensemble.
type TrendParams struct {
	Period     int     `yaml:"period" json:"period" validate:"required,gt=0"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier" validate:"required,gt=0"`
}

// TrendReading is the per-bar output of one band calculator.
//
// Invariant: once the underlying ATR is defined, exactly one of
// {LowerBand, UpperBand} is defined per bar. The band matching the trend
// direction ratchets toward price while the direction persists.
type TrendReading struct {
	Date      time.Time
	Uptrend   bool
	LowerBand optional.Option[float64]
	UpperBand optional.Option[float64]
}

// ActiveBand returns the band matching the reading's trend direction, if
// defined.
func (r TrendReading) ActiveBand() optional.Option[float64] {
	if r.Uptrend {
		return r.LowerBand
	}

	return r.UpperBand
}

// EnsembleTrend combines independent trend readings computed with different
// parameter tuples over the same series. Trend is the AND of all member
// trends; bands are the mean of defined member bands on bars that share the
// ensemble direction.
type EnsembleTrend struct {
	Ticker   string
	Readings []TrendReading
}

// Len returns the number of per-bar readings.
func (e EnsembleTrend) Len() int {
	return len(e.Readings)
}
