package windowing

import (
	"math"
	"testing"
)

func TestHannPeriodicEndpoints(t *testing.T) {
	h := NewHann(8, false)
	coeffs := h.Coefficients()

	if len(coeffs) != 8 {
		t.Fatalf("got %d coefficients, want 8", len(coeffs))
	}
	if coeffs[0] != 0 {
		t.Errorf("coeffs[0] = %v, want 0", coeffs[0])
	}
	// Periodic window peaks at size/2
	if math.Abs(coeffs[4]-1.0) > 1e-12 {
		t.Errorf("coeffs[4] = %v, want 1", coeffs[4])
	}
}

func TestHannSymmetricEndpoints(t *testing.T) {
	h := NewHann(9, true)
	coeffs := h.Coefficients()

	if coeffs[0] != 0 || math.Abs(coeffs[8]) > 1e-12 {
		t.Errorf("symmetric window endpoints = %v, %v, want 0, 0", coeffs[0], coeffs[8])
	}
	if math.Abs(coeffs[4]-1.0) > 1e-12 {
		t.Errorf("symmetric window midpoint = %v, want 1", coeffs[4])
	}
}

func TestHannApplyInPlace(t *testing.T) {
	h := NewHann(4, false)

	signal := []float64{1, 1, 1, 1}
	if err := h.ApplyInPlace(signal); err != nil {
		t.Fatalf("ApplyInPlace: %v", err)
	}
	for i, want := range h.Coefficients() {
		if math.Abs(signal[i]-want) > 1e-12 {
			t.Errorf("signal[%d] = %v, want %v", i, signal[i], want)
		}
	}

	if err := h.ApplyInPlace(make([]float64, 5)); err == nil {
		t.Error("expected error for mismatched signal length")
	}
}
