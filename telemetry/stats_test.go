package telemetry

import (
	"math"
	"testing"
)

func TestComputeSpeedStats(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	mean, std, p50, p90 := ComputeSpeedStats(values)

	if math.Abs(mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	// Sample std of 1..10
	if math.Abs(std-3.0277) > 0.001 {
		t.Errorf("std = %v, want ~3.0277", std)
	}
	if p50 != 5 {
		t.Errorf("p50 = %v, want 5", p50)
	}
	if p90 != 9 {
		t.Errorf("p90 = %v, want 9", p90)
	}
}

func TestComputeSpeedStatsUnsortedInput(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	_, _, p50, _ := ComputeSpeedStats(values)

	if p50 != 2 {
		t.Errorf("p50 = %v, want 2", p50)
	}
	// Input must not be reordered
	if values[0] != 4 || values[1] != 1 {
		t.Errorf("input was modified: %v", values)
	}
}

func TestComputeSpeedStatsSmall(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		wantMean float64
		wantStd  float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{2.5}, 2.5, 0},
		{"pair", []float64{1, 3}, 2, math.Sqrt2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std, _, _ := ComputeSpeedStats(tt.values)
			if math.Abs(mean-tt.wantMean) > 1e-9 || math.Abs(std-tt.wantStd) > 1e-9 {
				t.Errorf("mean/std = %v/%v, want %v/%v", mean, std, tt.wantMean, tt.wantStd)
			}
		})
	}
}

func TestBitBalance(t *testing.T) {
	tests := []struct {
		bits, ones int
		want       float64
	}{
		{0, 0, 0},
		{10, 10, 1},
		{10, 0, 0},
		{8, 2, 0.25},
	}
	for _, tt := range tests {
		if got := BitBalance(tt.bits, tt.ones); got != tt.want {
			t.Errorf("BitBalance(%d, %d) = %v, want %v", tt.bits, tt.ones, got, tt.want)
		}
	}
}
