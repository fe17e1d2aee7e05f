package indicator

import (
	"github.com/robotrader-lab/robotrader/internal/types"
	"github.com/robotrader-lab/robotrader/pkg/errors"
)

// DefaultMACDParams returns the conventional 12/26/9 MACD windows.
func DefaultMACDParams() types.MACDParams {
	return types.MACDParams{
		FastPeriod:   12,
		SlowPeriod:   26,
		SignalPeriod: 9,
	}
}

// MACD computes the MACD line (fast EMA minus slow EMA of closes), its
// signal line, and crossover buy/sell events.
type MACD struct {
	params types.MACDParams
}

// NewMACD creates a MACD calculator with the given windows.
func NewMACD(params types.MACDParams) (*MACD, error) {
	if params.FastPeriod <= 0 || params.SlowPeriod <= 0 || params.SignalPeriod <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"MACD periods must be positive integers, got %d/%d/%d",
			params.FastPeriod, params.SlowPeriod, params.SignalPeriod)
	}

	if params.FastPeriod >= params.SlowPeriod {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"fast period %d must be shorter than slow period %d",
			params.FastPeriod, params.SlowPeriod)
	}

	return &MACD{params: params}, nil
}

// crossSide tracks which of the two lines is currently on top.
type crossSide int

const (
	sideUnset crossSide = iota
	sideMACDAbove
	sideSignalAbove
)

// Compute walks the series left to right and emits one reading per bar.
// An event fires only on the bar where the "greater" side flips, gated on
// the sign of the MACD value at the flip: a flip to MACD-above with a
// negative MACD marks a buy, a flip to signal-above with a positive MACD
// marks a sell. No event can fire on the first bar.
func (m *MACD) Compute(series types.PriceSeries) []types.MomentumReading {
	closes := series.Closes()
	fast := EMASeries(closes, m.params.FastPeriod)
	slow := EMASeries(closes, m.params.SlowPeriod)

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}

	signal := EMASeries(macd, m.params.SignalPeriod)

	readings := make([]types.MomentumReading, 0, len(closes))
	prev := sideUnset

	for i := range macd {
		side := sideSignalAbove
		if macd[i] >= signal[i] {
			side = sideMACDAbove
		}

		reading := types.MomentumReading{
			Date:      series.Bars[i].Date,
			MACD:      macd[i],
			Signal:    signal[i],
			Histogram: macd[i] - signal[i],
		}

		if side != prev && prev != sideUnset {
			if prev == sideSignalAbove && macd[i] < 0 {
				reading.BuyEvent = true
			} else if prev == sideMACDAbove && macd[i] > 0 {
				reading.SellEvent = true
			}
		}

		readings = append(readings, reading)
		prev = side
	}

	return readings
}
