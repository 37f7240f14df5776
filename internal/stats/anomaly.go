package stats

// IQRResult describes the upper-tail outliers of a column.
type IQRResult struct {
	Q1        float64
	Q3        float64
	IQR       float64
	Threshold float64 // Q3 + 1.5*IQR
	Indices   []int   // rows strictly above Threshold, in row order
}

// IQRMultiplier is the Tukey fence factor.
const IQRMultiplier = 1.5

// DetectIQROutliers flags every value strictly greater than Q3 + 1.5*IQR.
// Lower-tail outliers are not reported.
func DetectIQROutliers(values []float64) IQRResult {
	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1

	result := IQRResult{
		Q1:        q1,
		Q3:        q3,
		IQR:       iqr,
		Threshold: q3 + IQRMultiplier*iqr,
		Indices:   []int{},
	}

	for i, v := range values {
		if v > result.Threshold {
			result.Indices = append(result.Indices, i)
		}
	}
	return result
}
