package analytics

const (
	TrendIncreasing = "Increasing"
	TrendDecreasing = "Decreasing"
	TrendStable     = "Stable"
)

// Average returns the arithmetic mean of the series, or 0 for an empty one.
func Average(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// DetermineTrend fits a least-squares line through the series (x = index)
// and classifies its slope: above 0.1 is increasing, below -0.1 decreasing,
// anything between is stable. Fewer than two points has no trend and
// returns "".
func DetermineTrend(series []float64) string {
	n := len(series)
	if n < 2 {
		return ""
	}

	xMean := float64(n-1) / 2
	yMean := Average(series)

	var num, den float64
	for i, y := range series {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	slope := num / den

	switch {
	case slope > 0.1:
		return TrendIncreasing
	case slope < -0.1:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
