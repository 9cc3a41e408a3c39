package spectral

import (
	"math"
	"testing"

	"github.com/MattaKruger/timbre/algorithms/windowing"
)

func TestSTFTShape(t *testing.T) {
	stft := NewSTFT()
	window := windowing.NewHann(2048, false)

	signal := make([]float64, 2048+512*3)
	result, err := stft.Compute(signal, 2048, 512, 22050, window)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if result.TimeFrames != 4 {
		t.Errorf("TimeFrames = %d, want 4", result.TimeFrames)
	}
	if result.FreqBins != 1025 {
		t.Errorf("FreqBins = %d, want 1025", result.FreqBins)
	}
	if len(result.Magnitude) != 4 || len(result.Magnitude[0]) != 1025 {
		t.Errorf("magnitude matrix is %dx%d, want 4x1025", len(result.Magnitude), len(result.Magnitude[0]))
	}
	if math.Abs(result.FreqResolution-22050.0/2048.0) > 1e-9 {
		t.Errorf("FreqResolution = %v, want %v", result.FreqResolution, 22050.0/2048.0)
	}
	if math.Abs(result.TimeResolution-512.0/22050.0) > 1e-12 {
		t.Errorf("TimeResolution = %v, want %v", result.TimeResolution, 512.0/22050.0)
	}
}

func TestSTFTSinePeakBin(t *testing.T) {
	stft := NewSTFT()

	// Bin-exact sine: k cycles over one window land all energy in bin k
	const (
		windowSize = 1024
		sampleRate = 8000
		k          = 64
	)
	freq := float64(k) * float64(sampleRate) / float64(windowSize)

	signal := make([]float64, windowSize)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}

	result, err := stft.Compute(signal, windowSize, windowSize, sampleRate, windowing.NewHann(windowSize, false))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	peak := 0
	for i, mag := range result.Magnitude[0] {
		if mag > result.Magnitude[0][peak] {
			peak = i
		}
	}
	if peak != k {
		t.Errorf("peak bin = %d, want %d", peak, k)
	}
}

func TestSTFTDeterministic(t *testing.T) {
	stft := NewSTFT()
	window := windowing.NewHann(512, false)

	signal := make([]float64, 8192)
	for i := range signal {
		signal[i] = math.Sin(2*math.Pi*440*float64(i)/22050) + 0.3*math.Sin(2*math.Pi*1330*float64(i)/22050)
	}

	first, err := stft.Compute(signal, 512, 128, 22050, window)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := stft.Compute(signal, 512, 128, 22050, window)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for ti := range first.Magnitude {
		for fi := range first.Magnitude[ti] {
			if first.Magnitude[ti][fi] != second.Magnitude[ti][fi] {
				t.Fatalf("magnitude[%d][%d] differs between runs", ti, fi)
			}
		}
	}
}

func TestSTFTErrors(t *testing.T) {
	stft := NewSTFT()

	tests := []struct {
		name       string
		signal     []float64
		windowSize int
		hopSize    int
	}{
		{"empty signal", nil, 2048, 512},
		{"zero window", make([]float64, 4096), 0, 512},
		{"zero hop", make([]float64, 4096), 2048, 0},
		{"signal shorter than window", make([]float64, 1024), 2048, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := stft.Compute(tt.signal, tt.windowSize, tt.hopSize, 22050, nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
