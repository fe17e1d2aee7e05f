package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/robotrader-lab/robotrader/internal/logger"
	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

type BarStoreTestSuite struct {
	suite.Suite
	store *BarStore
	ctx   context.Context
}

func TestBarStoreSuite(t *testing.T) {
	suite.Run(t, new(BarStoreTestSuite))
}

func (suite *BarStoreTestSuite) SetupTest() {
	log, err := logger.NewDebugLogger()
	suite.Require().NoError(err)

	store, err := OpenBarStore(":memory:", log)
	suite.Require().NoError(err)

	suite.store = store
	suite.ctx = context.Background()
}

func (suite *BarStoreTestSuite) TearDownTest() {
	suite.store.Close()
}

func (suite *BarStoreTestSuite) day(s string) time.Time {
	t, err := types.ParseDay(s)
	suite.Require().NoError(err)

	return t
}

func (suite *BarStoreTestSuite) seedSeries(ticker string, days []string, closes []float64) {
	suite.Require().Equal(len(days), len(closes))

	series := types.PriceSeries{Ticker: ticker}
	for i, d := range days {
		series.Bars = append(series.Bars, types.Bar{
			Date:     suite.day(d),
			Open:     closes[i] - 1,
			High:     closes[i] + 2,
			Low:      closes[i] - 2,
			Close:    closes[i],
			AdjClose: closes[i],
			Volume:   1000,
		})
	}

	suite.Require().NoError(suite.store.WriteSeries(series))
}

func (suite *BarStoreTestSuite) TestGetBarsRoundTrip() {
	days := []string{"2024-01-02", "2024-01-03", "2024-01-04"}
	suite.seedSeries("AAPL", days, []float64{100, 101, 102})

	series, err := suite.store.GetBars(suite.ctx, "AAPL",
		suite.day("2024-01-01"), suite.day("2024-01-31"))
	suite.Require().NoError(err)
	suite.Equal("AAPL", series.Ticker)
	suite.Require().Len(series.Bars, 3)
	suite.Equal("2024-01-02", series.Bars[0].Day())
	suite.Equal(102.0, series.Bars[2].Close)
	suite.NoError(series.Validate())
}

func (suite *BarStoreTestSuite) TestGetBarsWindowFiltered() {
	days := []string{"2024-01-02", "2024-01-03", "2024-01-04"}
	suite.seedSeries("AAPL", days, []float64{100, 101, 102})

	series, err := suite.store.GetBars(suite.ctx, "AAPL",
		suite.day("2024-01-03"), suite.day("2024-01-03"))
	suite.Require().NoError(err)
	suite.Require().Len(series.Bars, 1)
	suite.Equal(101.0, series.Bars[0].Close)
}

func (suite *BarStoreTestSuite) TestGetBarsEmptyReturnsDataUnavailable() {
	_, err := suite.store.GetBars(suite.ctx, "MSFT",
		suite.day("2024-01-01"), suite.day("2024-01-31"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func (suite *BarStoreTestSuite) TestWriteSeriesReplacesExistingDay() {
	suite.seedSeries("AAPL", []string{"2024-01-02"}, []float64{100})
	suite.seedSeries("AAPL", []string{"2024-01-02"}, []float64{110})

	series, err := suite.store.GetBars(suite.ctx, "AAPL",
		suite.day("2024-01-01"), suite.day("2024-01-31"))
	suite.Require().NoError(err)
	suite.Require().Len(series.Bars, 1)
	suite.Equal(110.0, series.Bars[0].Close)
}

func (suite *BarStoreTestSuite) TestGetCurrentPriceIsLatestClose() {
	suite.seedSeries("AAPL", []string{"2024-01-02", "2024-01-05"}, []float64{100, 107})

	price, err := suite.store.GetCurrentPrice(suite.ctx, "AAPL")
	suite.Require().NoError(err)
	suite.Equal(107.0, price)
}

func (suite *BarStoreTestSuite) TestGetCurrentPriceUnknownTicker() {
	_, err := suite.store.GetCurrentPrice(suite.ctx, "ZZZZ")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func (suite *BarStoreTestSuite) TestGetOpeningPrice() {
	suite.seedSeries("AAPL", []string{"2024-01-02"}, []float64{100})

	open, err := suite.store.GetOpeningPrice(suite.ctx, "AAPL", "2024-01-02")
	suite.Require().NoError(err)
	suite.Equal(99.0, open)
}

func (suite *BarStoreTestSuite) TestGetOpeningPriceMissingDay() {
	suite.seedSeries("AAPL", []string{"2024-01-02"}, []float64{100})

	_, err := suite.store.GetOpeningPrice(suite.ctx, "AAPL", "2024-01-03")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func (suite *BarStoreTestSuite) TestGetOpeningPriceMalformedDay() {
	_, err := suite.store.GetOpeningPrice(suite.ctx, "AAPL", "01/02/2024")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMalformedDate))
}

func (suite *BarStoreTestSuite) TestSessionDatesMergesTickers() {
	suite.seedSeries("AAPL", []string{"2024-01-02", "2024-01-03"}, []float64{100, 101})
	suite.seedSeries("MSFT", []string{"2024-01-03", "2024-01-04"}, []float64{300, 301})

	days, err := suite.store.SessionDates(suite.ctx, "2024-01-01", "2024-01-31")
	suite.Require().NoError(err)
	suite.Equal([]string{"2024-01-02", "2024-01-03", "2024-01-04"}, days)
}

func (suite *BarStoreTestSuite) TestSessionDatesEmptyRange() {
	suite.seedSeries("AAPL", []string{"2024-01-02"}, []float64{100})

	days, err := suite.store.SessionDates(suite.ctx, "2024-02-01", "2024-02-28")
	suite.Require().NoError(err)
	suite.Empty(days)
}

func (suite *BarStoreTestSuite) TestSessionDatesMalformedBounds() {
	_, err := suite.store.SessionDates(suite.ctx, "2024-13-01", "2024-01-31")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMalformedDate))
}
