package temporal

import (
	"math"
)

// Energy computes frame-level RMS amplitude, a loudness indicator. Frames are
// taken from the raw time-domain signal, not the spectrum, with the same
// framing the spectral transform uses so the series align.
type Energy struct {
	frameSize int
	hopSize   int
}

// NewEnergy creates a new RMS energy calculator
func NewEnergy(frameSize, hopSize int) *Energy {
	return &Energy{
		frameSize: frameSize,
		hopSize:   hopSize,
	}
}

// Compute calculates the RMS of a single frame: √(mean x²).
func (e *Energy) Compute(frame []float64) float64 {
	if len(frame) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, sample := range frame {
		sumSquares += sample * sample
	}

	return math.Sqrt(sumSquares / float64(len(frame)))
}

// ComputeFrames calculates RMS for overlapping frames of a signal.
// Only complete frames are reported.
func (e *Energy) ComputeFrames(signal []float64) []float64 {
	if len(signal) < e.frameSize || e.frameSize <= 0 || e.hopSize <= 0 {
		return []float64{}
	}

	numFrames := (len(signal)-e.frameSize)/e.hopSize + 1
	energies := make([]float64, numFrames)

	for i := 0; i < numFrames; i++ {
		startIdx := i * e.hopSize
		endIdx := startIdx + e.frameSize

		if endIdx > len(signal) {
			break
		}

		energies[i] = e.Compute(signal[startIdx:endIdx])
	}

	return energies
}
