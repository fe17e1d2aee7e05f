package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

type SupertrendTestSuite struct {
	suite.Suite
}

func TestSupertrendSuite(t *testing.T) {
	suite.Run(t, new(SupertrendTestSuite))
}

func (suite *SupertrendTestSuite) newCalculator(period int, multiplier float64) *Supertrend {
	st, err := NewSupertrend(types.TrendParams{Period: period, Multiplier: multiplier})
	suite.Require().NoError(err)

	return st
}

func (suite *SupertrendTestSuite) TestNewSupertrendRejectsBadParams() {
	_, err := NewSupertrend(types.TrendParams{Period: 0, Multiplier: 3})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = NewSupertrend(types.TrendParams{Period: 10, Multiplier: 0})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidMultiplier))
}

func (suite *SupertrendTestSuite) TestEmptySeries() {
	st := suite.newCalculator(3, 1)
	suite.Empty(st.Compute(types.PriceSeries{Ticker: "TEST"}))
}

func (suite *SupertrendTestSuite) TestShortSeriesDegradesWithoutError() {
	st := suite.newCalculator(14, 3)
	readings := st.Compute(flatSeries(5, 100, 1))

	suite.Len(readings, 5)

	for _, r := range readings {
		suite.True(r.Uptrend)
		suite.True(r.LowerBand.IsNone())
		suite.True(r.UpperBand.IsNone())
	}
}

func (suite *SupertrendTestSuite) TestSteadyUptrendBands() {
	st := suite.newCalculator(3, 1)
	readings := st.Compute(flatSeries(8, 100, 1))

	// ATR settles at 2 from bar 3, so the lower band is 100 - 1*2 = 98.
	for i := 3; i < 8; i++ {
		suite.True(readings[i].Uptrend)
		suite.True(readings[i].LowerBand.IsSome())
		suite.InDelta(98.0, readings[i].LowerBand.Unwrap(), 1e-9)
		suite.True(readings[i].UpperBand.IsNone())
	}
}

func (suite *SupertrendTestSuite) TestExactlyOneBandOnceATRDefined() {
	series := flatSeries(12, 100, 1)
	// Crash on bar 6 flips the trend down.
	series.Bars[6].High = 91
	series.Bars[6].Low = 89
	series.Bars[6].Close = 90

	st := suite.newCalculator(3, 1)
	readings := st.Compute(series)

	for i := 3; i < len(readings); i++ {
		suite.NotEqual(readings[i].LowerBand.IsSome(), readings[i].UpperBand.IsSome(),
			"bar %d must define exactly one band", i)
	}
}

func (suite *SupertrendTestSuite) TestBreakdownFlipsTrendDown() {
	series := flatSeries(10, 100, 1)
	series.Bars[6].High = 91
	series.Bars[6].Low = 89
	series.Bars[6].Close = 90

	st := suite.newCalculator(3, 1)
	readings := st.Compute(series)

	suite.True(readings[5].Uptrend)
	suite.False(readings[6].Uptrend)
	suite.True(readings[6].UpperBand.IsSome())
	suite.True(readings[6].LowerBand.IsNone())
}

func (suite *SupertrendTestSuite) TestBreakoutFlipsTrendUp() {
	series := flatSeries(10, 100, 1)
	series.Bars[6].High = 91
	series.Bars[6].Low = 89
	series.Bars[6].Close = 90
	// Sharp recovery well above any upper band.
	series.Bars[7].High = 151
	series.Bars[7].Low = 149
	series.Bars[7].Close = 150

	st := suite.newCalculator(3, 1)
	readings := st.Compute(series)

	suite.False(readings[6].Uptrend)
	suite.True(readings[7].Uptrend)
	suite.True(readings[7].LowerBand.IsSome())
}

func (suite *SupertrendTestSuite) TestLowerBandRatchet() {
	series := flatSeries(10, 100, 1)
	// A wide-range bar raises the ATR and would loosen the band; the
	// ratchet keeps the prior, tighter value.
	series.Bars[5].High = 105
	series.Bars[5].Low = 95

	st := suite.newCalculator(3, 1)
	readings := st.Compute(series)

	suite.True(readings[5].Uptrend)
	suite.InDelta(98.0, readings[5].LowerBand.Unwrap(), 1e-9)
}

func (suite *SupertrendTestSuite) TestRatchetMonotonicity() {
	series := flatSeries(20, 100, 1)
	series.Bars[5].High = 105
	series.Bars[5].Low = 95
	series.Bars[12].High = 104
	series.Bars[12].Low = 96

	st := suite.newCalculator(3, 1)
	readings := st.Compute(series)

	for i := 1; i < len(readings); i++ {
		prev, cur := readings[i-1], readings[i]
		if prev.Uptrend && cur.Uptrend && prev.LowerBand.IsSome() && cur.LowerBand.IsSome() {
			suite.GreaterOrEqual(cur.LowerBand.Unwrap(), prev.LowerBand.Unwrap())
		}

		if !prev.Uptrend && !cur.Uptrend && prev.UpperBand.IsSome() && cur.UpperBand.IsSome() {
			suite.LessOrEqual(cur.UpperBand.Unwrap(), prev.UpperBand.Unwrap())
		}
	}
}
