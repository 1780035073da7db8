package analytics

import (
	"math"
	"testing"
)

func TestCompareValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		current  float64
		previous float64
		change   float64
		pct      float64
	}{
		{"fifty percent up", 3000, 2000, 1000, 50},
		{"zero baseline", 3000, 0, 3000, 0},
		{"decline", 1500, 2000, -500, -25},
		{"both zero", 0, 0, 0, 0},
		{"negative baseline", 50, -100, 150, -150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := compareValues(tt.current, tt.previous)
			if c.Change != tt.change {
				t.Errorf("change = %v, want %v", c.Change, tt.change)
			}
			if math.Abs(c.ChangePercentage-tt.pct) > 1e-9 {
				t.Errorf("change percentage = %v, want %v", c.ChangePercentage, tt.pct)
			}
			if math.IsNaN(c.ChangePercentage) || math.IsInf(c.ChangePercentage, 0) {
				t.Error("percentage must be finite")
			}
		})
	}
}

func TestCalculateTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		series    []float64
		threshold float64
		want      TrendDirection
	}{
		{"empty", nil, 5, TrendInsufficientData},
		{"single point", []float64{100}, 5, TrendInsufficientData},
		{"rising", []float64{100, 100, 150, 150}, 5, TrendIncreasing},
		{"falling", []float64{150, 150, 100, 100}, 5, TrendDecreasing},
		{"flat", []float64{100, 101, 100, 102}, 5, TrendStable},
		{"within threshold", []float64{100, 100, 104, 104}, 5, TrendStable},
		{"just over threshold", []float64{100, 100, 106, 106}, 5, TrendIncreasing},
		{"zero first half rising", []float64{0, 0, 50, 50}, 5, TrendIncreasing},
		{"all zero", []float64{0, 0, 0, 0}, 5, TrendStable},
		{"odd length middle in second half", []float64{100, 200, 200}, 5, TrendIncreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := calculateTrend(tt.series, tt.threshold); got != tt.want {
				t.Errorf("calculateTrend(%v) = %s, want %s", tt.series, got, tt.want)
			}
		})
	}
}
