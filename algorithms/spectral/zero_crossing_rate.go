package spectral

import (
	"gonum.org/v1/gonum/stat"
)

// ZeroCrossingRate counts adjacent-sample sign changes per frame, a
// noisiness indicator. Values are normalized to [0,1] by frame length.
type ZeroCrossingRate struct {
	frameSize int
	hopSize   int
}

// NewZeroCrossingRate creates a calculator that frames the signal the same
// way the spectral transform does, so the series aligns with the others.
func NewZeroCrossingRate(frameSize, hopSize int) *ZeroCrossingRate {
	return &ZeroCrossingRate{
		frameSize: frameSize,
		hopSize:   hopSize,
	}
}

// Compute calculates the normalized ZCR of a single time-domain frame:
// sign changes between adjacent samples divided by frame length.
func (zcr *ZeroCrossingRate) Compute(frame []float64) float64 {
	if len(frame) < 2 {
		return 0.0
	}

	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0 && frame[i] < 0) || (frame[i-1] < 0 && frame[i] >= 0) {
			crossings++
		}
	}

	return float64(crossings) / float64(len(frame))
}

// ComputeFrames calculates ZCR for overlapping frames of a signal
func (zcr *ZeroCrossingRate) ComputeFrames(signal []float64) []float64 {
	if len(signal) < zcr.frameSize || zcr.frameSize <= 0 || zcr.hopSize <= 0 {
		return []float64{}
	}

	numFrames := (len(signal)-zcr.frameSize)/zcr.hopSize + 1
	zcrValues := make([]float64, numFrames)

	for i := 0; i < numFrames; i++ {
		startIdx := i * zcr.hopSize
		endIdx := startIdx + zcr.frameSize

		if endIdx > len(signal) {
			break
		}

		zcrValues[i] = zcr.Compute(signal[startIdx:endIdx])
	}

	return zcrValues
}

// ComputeStatistics summarizes a ZCR series for content analysis
func (zcr *ZeroCrossingRate) ComputeStatistics(zcrValues []float64) (mean, variance, minVal, maxVal float64) {
	if len(zcrValues) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(zcrValues, nil)
	variance = stat.Variance(zcrValues, nil)

	minVal = zcrValues[0]
	maxVal = zcrValues[0]
	for _, value := range zcrValues {
		if value < minVal {
			minVal = value
		}
		if value > maxVal {
			maxVal = value
		}
	}

	return mean, variance, minVal, maxVal
}
