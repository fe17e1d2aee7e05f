package indicator

// EMASeries computes an exponential moving average over values with
// smoothing factor 2/(window+1), seeded with the first value rather than a
// simple-average warmup. Every element of the result is defined.
func EMASeries(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / (float64(window) + 1.0)
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}

	return out
}
