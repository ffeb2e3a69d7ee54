package core

import "math"

// -----------------------------------------------------------------------------

// CalculateMeanStd computes mean and standard deviation with the given delta
// degrees of freedom: ddof 0 is the population std, ddof 1 the sample std.
// With len(data) <= ddof the std is undefined and NaN is returned.
func CalculateMeanStd(data []float64, ddof int) (float64, float64) {
	if len(data) == 0 {
		return math.NaN(), math.NaN()
	}

	// Calculate mean
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	if len(data) <= ddof {
		return mean, math.NaN()
	}

	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(varianceSum / float64(len(data)-ddof))
	return mean, std
}

// -----------------------------------------------------------------------------

// RollingStd computes the sample standard deviation over a trailing window.
// out[i] covers data[i-window+1 : i+1]; the first window-1 entries have no
// full window and are reported invalid with a NaN value.
func RollingStd(data []float64, window int) ([]float64, []bool) {
	out := make([]float64, len(data))
	valid := make([]bool, len(data))
	for i := range data {
		if window <= 0 || i < window-1 {
			out[i] = math.NaN()
			continue
		}
		_, std := CalculateMeanStd(data[i-window+1:i+1], 1)
		out[i] = std
		valid[i] = !math.IsNaN(std)
	}
	return out, valid
}

// -----------------------------------------------------------------------------

// AbsValues returns |v| for every entry.
func AbsValues(data []float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = math.Abs(v)
	}
	return out
}

// -----------------------------------------------------------------------------

// MinMax returns the extremes of data, skipping NaN. ok is false when no
// finite value exists.
func MinMax(data []float64) (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		ok = true
	}
	return min, max, ok
}
