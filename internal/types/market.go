package types

import (
	"time"

	"github.com/robotrader-lab/robotrader/pkg/errors"
)

// DateLayout is the canonical calendar-day format used across the engine.
// All trading-day identifiers (calendar sessions, signal dates, transaction
// dates) are truncated to this form.
const DateLayout = "2006-01-02"

// Bar is one OHLC record for a single trading session. Bars are immutable
// once fetched and owned by the series they belong to.
type Bar struct {
	Date     time.Time `csv:"date"`
	Open     float64   `csv:"open"`
	High     float64   `csv:"high"`
	Low      float64   `csv:"low"`
	Close    float64   `csv:"close"`
	AdjClose float64   `csv:"adj_close"`
	Volume   float64   `csv:"volume"`
}

// Day returns the bar's calendar day in canonical form.
func (b Bar) Day() string {
	return b.Date.Format(DateLayout)
}

// PriceSeries is an ordered sequence of bars for one ticker over a
// contiguous date range. Ordering invariant: strictly increasing date.
type PriceSeries struct {
	Ticker string
	Bars   []Bar
}

// Len returns the number of bars in the series.
func (s PriceSeries) Len() int {
	return len(s.Bars)
}

// Validate checks the series ordering invariant.
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return errors.Newf(errors.ErrCodeInvalidParameter,
				"bars out of order for %s: %s does not follow %s",
				s.Ticker, s.Bars[i].Day(), s.Bars[i-1].Day())
		}
	}

	return nil
}

// Closes returns the closing prices of the series in bar order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}

	return closes
}

// AdjCloses returns the adjusted closing prices of the series in bar order.
func (s PriceSeries) AdjCloses() []float64 {
	adj := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		adj[i] = bar.AdjClose
	}

	return adj
}

// ParseDay parses a canonical YYYY-MM-DD day string. A failure is reported
// as a malformed-date error so callers can distinguish bad input from
// missing data.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DateLayout, day)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrCodeMalformedDate, err,
			"date %q is not in YYYY-MM-DD format", day)
	}

	return t, nil
}
