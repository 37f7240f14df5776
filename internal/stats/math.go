package stats

import (
	"math"
	"slices"
	"strconv"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Round rounds v to the given number of decimal places. The exact binary value
// is rounded, so ties land on the even digit (2.125 becomes 2.12).
func Round(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// Sum returns the sum of values. An empty slice sums to zero.
func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s, _ := mstats.Sum(values)
	return s
}

// Mean returns the arithmetic mean. It fails on an empty slice.
func Mean(values []float64) (float64, error) {
	return mstats.Mean(values)
}

// SampleStdDev returns the standard deviation with an n-1 denominator.
// ok is false when fewer than two values are given.
func SampleStdDev(values []float64) (sd float64, ok bool) {
	if len(values) < 2 {
		return 0, false
	}
	sd, err := mstats.StandardDeviationSample(values)
	if err != nil || math.IsNaN(sd) {
		return 0, false
	}
	return sd, true
}

// Pearson returns the Pearson correlation coefficient of x and y.
// ok is false when the coefficient is undefined (short or constant input).
func Pearson(x, y []float64) (r float64, ok bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// Quantile returns the p-quantile of values using linear interpolation between
// order statistics at rank (n-1)p. It returns 0 for an empty slice.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	// Work on a copy to avoid mutating the original
	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)

	h := float64(len(temp)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	low := temp[int(lo)]
	return low + (h-lo)*(temp[int(hi)]-low)
}

// ArgMax returns the index of the first maximum value, or -1 for an empty slice.
func ArgMax(values []float64) int {
	best := -1
	for i, v := range values {
		if best == -1 || v > values[best] {
			best = i
		}
	}
	return best
}

// CountPositive counts values greater than zero.
func CountPositive(values []float64) int {
	n := 0
	for _, v := range values {
		if v > 0 {
			n++
		}
	}
	return n
}

// LongestPositiveRun returns the length of the longest run of consecutive values
// greater than zero. Only a non-positive value breaks a run.
func LongestPositiveRun(values []float64) int {
	count, maxCount := 0, 0
	for _, v := range values {
		if v > 0 {
			count++
		} else {
			count = 0
		}
		maxCount = max(maxCount, count)
	}
	return maxCount
}
