package types

import "time"

// MACDParams holds the EMA windows for the MACD calculation.
type MACDParams struct {
	FastPeriod   int `yaml:"fast_period" json:"fast_period" validate:"required,gt=0"`
	SlowPeriod   int `yaml:"slow_period" json:"slow_period" validate:"required,gt=0,gtfield=FastPeriod"`
	SignalPeriod int `yaml:"signal_period" json:"signal_period" validate:"required,gt=0"`
}

// MomentumReading is the per-bar MACD output. BuyEvent and SellEvent are
// true only on the bar where a qualifying crossover transition is detected;
// at most one of them is true per bar and neither fires on the first bar.
type MomentumReading struct {
	Date      time.Time
	MACD      float64
	Signal    float64
	Histogram float64
	BuyEvent  bool
	SellEvent bool
}
