package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type EMATestSuite struct {
	suite.Suite
}

func TestEMASuite(t *testing.T) {
	suite.Run(t, new(EMATestSuite))
}

func (suite *EMATestSuite) TestSeededWithFirstValue() {
	out := EMASeries([]float64{42, 42, 42}, 5)
	for _, v := range out {
		suite.InDelta(42.0, v, 1e-9)
	}
}

func (suite *EMATestSuite) TestSpanSmoothing() {
	// window 3 gives alpha = 0.5
	out := EMASeries([]float64{1, 2, 3}, 3)
	suite.InDelta(1.0, out[0], 1e-9)
	suite.InDelta(1.5, out[1], 1e-9)
	suite.InDelta(2.25, out[2], 1e-9)
}

func (suite *EMATestSuite) TestEmptyInput() {
	suite.Empty(EMASeries(nil, 12))
}

func (suite *EMATestSuite) TestLagsBehindTrend() {
	values := []float64{100, 101, 102, 103, 104, 105}
	out := EMASeries(values, 10)

	for i := 1; i < len(values); i++ {
		suite.Less(out[i], values[i])
		suite.Greater(out[i], out[i-1])
	}
}
