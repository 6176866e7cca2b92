package analytics

import (
	"math"
	"testing"
)

func TestAverage(t *testing.T) {
	cases := []struct {
		name   string
		series []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"several", []float64{2, 4, 6}, 4},
		{"fractional", []float64{1, 2}, 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Average(tc.series); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Average(%v) = %v, want %v", tc.series, got, tc.want)
			}
		})
	}
}

func TestDetermineTrend(t *testing.T) {
	cases := []struct {
		name   string
		series []float64
		want   string
	}{
		{"empty", nil, ""},
		{"single point", []float64{5}, ""},
		{"rising", []float64{1, 2, 3, 4, 5}, TrendIncreasing},
		{"falling", []float64{5, 4, 3, 2, 1}, TrendDecreasing},
		{"flat", []float64{4, 4, 4, 4}, TrendStable},
		{"noisy but flat", []float64{5, 5.1, 4.9, 5}, TrendStable},
		{"slope just above threshold", []float64{1, 1.2, 1.4}, TrendIncreasing},
		{"slope exactly at threshold", []float64{1, 1.1, 1.2}, TrendStable},
		{"slope just below negative threshold", []float64{1.4, 1.2, 1}, TrendDecreasing},
		{"two points up", []float64{3, 4}, TrendIncreasing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetermineTrend(tc.series); got != tc.want {
				t.Errorf("DetermineTrend(%v) = %q, want %q", tc.series, got, tc.want)
			}
		})
	}
}
