package indicator

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/robotrader-lab/robotrader/internal/types"
)

// TrueRangeSeries computes the per-bar True Range of a series:
// max(high-low, |high-prevClose|, |low-prevClose|). The first bar has no
// previous close and its true range is undefined.
func TrueRangeSeries(series types.PriceSeries) []optional.Option[float64] {
	tr := make([]optional.Option[float64], series.Len())

	for i, bar := range series.Bars {
		if i == 0 {
			tr[i] = optional.None[float64]()

			continue
		}

		prevClose := series.Bars[i-1].Close
		tr[i] = optional.Some(math.Max(
			math.Max(
				bar.High-bar.Low,
				math.Abs(bar.High-prevClose),
			),
			math.Abs(bar.Low-prevClose),
		))
	}

	return tr
}

// ATRSeries computes the Average True Range as an exponentially-weighted
// moving average of the true range with smoothing factor 1/period. The
// value stays undefined until `period` defined true-range samples have
// accumulated; undefined samples still decay the accumulated weights so the
// average tracks bar positions, not sample counts.
func ATRSeries(series types.PriceSeries, period int) []optional.Option[float64] {
	tr := TrueRangeSeries(series)
	out := make([]optional.Option[float64], len(tr))
	alpha := 1.0 / float64(period)

	var num, den float64

	samples := 0

	for i, v := range tr {
		num *= 1 - alpha
		den *= 1 - alpha

		if v.IsSome() {
			num += v.Unwrap()
			den++
			samples++
		}

		if samples >= period && den > 0 {
			out[i] = optional.Some(num / den)
		} else {
			out[i] = optional.None[float64]()
		}
	}

	return out
}
