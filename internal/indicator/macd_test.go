package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/robotrader-lab/robotrader/internal/types"
)

type MACDTestSuite struct {
	suite.Suite
}

func TestMACDSuite(t *testing.T) {
	suite.Run(t, new(MACDTestSuite))
}

func seriesFromCloses(closes []float64) types.PriceSeries {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		bars[i] = types.Bar{
			Date:     start.AddDate(0, 0, i),
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			AdjClose: c,
		}
	}

	return types.PriceSeries{Ticker: "TEST", Bars: bars}
}

func (suite *MACDTestSuite) TestNewMACDRejectsBadPeriods() {
	_, err := NewMACD(types.MACDParams{FastPeriod: 0, SlowPeriod: 26, SignalPeriod: 9})
	suite.Error(err)

	_, err = NewMACD(types.MACDParams{FastPeriod: 26, SlowPeriod: 12, SignalPeriod: 9})
	suite.Error(err)
}

func (suite *MACDTestSuite) TestDefaultParams() {
	params := DefaultMACDParams()
	suite.Equal(12, params.FastPeriod)
	suite.Equal(26, params.SlowPeriod)
	suite.Equal(9, params.SignalPeriod)
}

func (suite *MACDTestSuite) TestFlatSeriesProducesNoEvents() {
	macd, err := NewMACD(DefaultMACDParams())
	suite.Require().NoError(err)

	readings := macd.Compute(seriesFromCloses([]float64{100, 100, 100, 100, 100}))
	suite.Len(readings, 5)

	for _, r := range readings {
		suite.InDelta(0, r.MACD, 1e-9)
		suite.InDelta(0, r.Signal, 1e-9)
		suite.InDelta(0, r.Histogram, 1e-9)
		suite.False(r.BuyEvent)
		suite.False(r.SellEvent)
	}
}

func (suite *MACDTestSuite) TestNoEventOnFirstBarAndAtMostOnePerBar() {
	closes := make([]float64, 0, 30)
	for i := 0; i < 20; i++ {
		closes = append(closes, 100-float64(i))
	}

	for i := 0; i < 10; i++ {
		closes = append(closes, 95+2*float64(i))
	}

	macd, err := NewMACD(DefaultMACDParams())
	suite.Require().NoError(err)

	readings := macd.Compute(seriesFromCloses(closes))

	suite.False(readings[0].BuyEvent)
	suite.False(readings[0].SellEvent)

	for i, r := range readings {
		suite.False(r.BuyEvent && r.SellEvent, "bar %d fired both events", i)
	}
}

func (suite *MACDTestSuite) TestDeclineThenRecoveryMarksSingleBuy() {
	// Twenty declining bars push the MACD line below its signal line;
	// the sharp recovery crosses back over while the MACD is still
	// negative, which is exactly the buy transition.
	closes := make([]float64, 0, 30)
	for i := 0; i < 20; i++ {
		closes = append(closes, 100-float64(i))
	}

	for i := 0; i < 10; i++ {
		closes = append(closes, 95+2*float64(i))
	}

	macd, err := NewMACD(DefaultMACDParams())
	suite.Require().NoError(err)

	readings := macd.Compute(seriesFromCloses(closes))

	buyBars := []int{}

	for i, r := range readings {
		if r.BuyEvent {
			buyBars = append(buyBars, i)
		}

		suite.False(r.SellEvent, "unexpected sell event on bar %d", i)
	}

	suite.Require().Len(buyBars, 1)
	suite.GreaterOrEqual(buyBars[0], 20, "buy must fire in the recovery segment")
	suite.Negative(readings[buyBars[0]].MACD)
}

func (suite *MACDTestSuite) TestRallyThenBreakdownMarksSingleSell() {
	// Mirror scenario: a rally pushes MACD above the signal line and
	// positive; the breakdown crosses under while still positive.
	closes := make([]float64, 0, 30)
	for i := 0; i < 20; i++ {
		closes = append(closes, 100+float64(i))
	}

	for i := 0; i < 10; i++ {
		closes = append(closes, 125-2*float64(i))
	}

	macd, err := NewMACD(DefaultMACDParams())
	suite.Require().NoError(err)

	readings := macd.Compute(seriesFromCloses(closes))

	sellBars := []int{}

	for i, r := range readings {
		if r.SellEvent {
			sellBars = append(sellBars, i)
		}

		suite.False(r.BuyEvent, "unexpected buy event on bar %d", i)
	}

	suite.Require().Len(sellBars, 1)
	suite.GreaterOrEqual(sellBars[0], 20)
	suite.Positive(readings[sellBars[0]].MACD)
}

func (suite *MACDTestSuite) TestHistogramIsLineMinusSignal() {
	closes := []float64{100, 102, 101, 104, 103, 106, 108, 107, 110}

	macd, err := NewMACD(types.MACDParams{FastPeriod: 3, SlowPeriod: 6, SignalPeriod: 2})
	suite.Require().NoError(err)

	for _, r := range macd.Compute(seriesFromCloses(closes)) {
		suite.InDelta(r.MACD-r.Signal, r.Histogram, 1e-9)
	}
}
