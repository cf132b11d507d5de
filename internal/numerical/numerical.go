package numerical

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

func SuppressNaN(num float64) float64 {
	if math.IsNaN(num) {
		return 0
	}
	return num
}

// ChannelMean returns the mean across detector channels.
func ChannelMean(channels ...float64) float64 {
	return SuppressNaN(stat.Mean(channels, nil))
}

// ChannelRMS returns the root-mean-square across detector channels. Used
// to combine per-channel standard deviations into one noise figure.
func ChannelRMS(channels ...float64) float64 {
	var sum float64
	for _, c := range channels {
		sum += c * c
	}
	return SuppressNaN(math.Sqrt(sum / float64(len(channels))))
}

// QuadratureSum returns sqrt(a0^2 + a1^2 + ...).
func QuadratureSum(channels ...float64) float64 {
	var sum float64
	for _, c := range channels {
		sum += c * c
	}
	return math.Sqrt(sum)
}

// SafeRatio returns num/den with zero-denominator and NaN results
// suppressed to 0.
func SafeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return SuppressNaN(num / den)
}
