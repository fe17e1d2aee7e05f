package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/robotrader-lab/robotrader/pkg/errors"
)

type MarketTestSuite struct {
	suite.Suite
}

func TestMarketSuite(t *testing.T) {
	suite.Run(t, new(MarketTestSuite))
}

func day(s string) time.Time {
	t, _ := time.Parse(DateLayout, s)
	return t
}

func (suite *MarketTestSuite) TestBarDay() {
	bar := Bar{Date: time.Date(2023, 5, 2, 14, 30, 0, 0, time.UTC)}
	suite.Equal("2023-05-02", bar.Day())
}

func (suite *MarketTestSuite) TestSeriesValidateOrdered() {
	series := PriceSeries{
		Ticker: "AAPL",
		Bars: []Bar{
			{Date: day("2023-01-03"), Close: 125},
			{Date: day("2023-01-04"), Close: 126},
			{Date: day("2023-01-05"), Close: 127},
		},
	}
	suite.NoError(series.Validate())
}

func (suite *MarketTestSuite) TestSeriesValidateOutOfOrder() {
	series := PriceSeries{
		Ticker: "AAPL",
		Bars: []Bar{
			{Date: day("2023-01-04"), Close: 126},
			{Date: day("2023-01-03"), Close: 125},
		},
	}

	err := series.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *MarketTestSuite) TestSeriesValidateDuplicateDate() {
	series := PriceSeries{
		Ticker: "AAPL",
		Bars: []Bar{
			{Date: day("2023-01-03"), Close: 125},
			{Date: day("2023-01-03"), Close: 126},
		},
	}
	suite.Error(series.Validate())
}

func (suite *MarketTestSuite) TestCloses() {
	series := PriceSeries{
		Bars: []Bar{
			{Date: day("2023-01-03"), Close: 125, AdjClose: 124.5},
			{Date: day("2023-01-04"), Close: 126, AdjClose: 125.5},
		},
	}
	suite.Equal([]float64{125, 126}, series.Closes())
	suite.Equal([]float64{124.5, 125.5}, series.AdjCloses())
}

func (suite *MarketTestSuite) TestParseDay() {
	t, err := ParseDay("2023-02-28")
	suite.NoError(err)
	suite.Equal(2023, t.Year())
	suite.Equal(time.February, t.Month())
	suite.Equal(28, t.Day())
}

func (suite *MarketTestSuite) TestParseDayMalformed() {
	// Missing the day component must surface as a malformed-date error,
	// never as a silent zero value.
	_, err := ParseDay("2024-13")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMalformedDate))
}
