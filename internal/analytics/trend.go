package analytics

// TrendDirection classifies how a value series is moving.
type TrendDirection string

const (
	TrendIncreasing       TrendDirection = "increasing"
	TrendDecreasing       TrendDirection = "decreasing"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// Comparison is the delta between a current-period aggregate and its
// comparison-period counterpart.
type Comparison struct {
	Current          float64 `json:"current"`
	Previous         float64 `json:"previous"`
	Change           float64 `json:"change"`
	ChangePercentage float64 `json:"change_percentage"`
}

// compareValues computes the absolute and relative change from previous
// to current. A zero baseline reports a 0 percentage; the result never
// carries Inf or NaN.
func compareValues(current, previous float64) Comparison {
	c := Comparison{
		Current:  current,
		Previous: previous,
		Change:   current - previous,
	}
	if previous != 0 {
		c.ChangePercentage = (current - previous) / previous * 100
	}
	return c
}

// calculateTrend classifies a value series by comparing the mean of its
// second half against the mean of its first. Fewer than two points is
// insufficient data; a relative change smaller in magnitude than
// thresholdPct is stable. With an odd length the middle point belongs to
// the second half.
func calculateTrend(series []float64, thresholdPct float64) TrendDirection {
	if len(series) < 2 {
		return TrendInsufficientData
	}

	mid := len(series) / 2
	firstMean := mean(series[:mid])
	secondMean := mean(series[mid:])

	if firstMean == 0 {
		if secondMean == 0 {
			return TrendStable
		}
		return TrendIncreasing
	}

	changePct := (secondMean - firstMean) / firstMean * 100
	switch {
	case changePct > thresholdPct:
		return TrendIncreasing
	case changePct < -thresholdPct:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
