package decode

import "math"

// Resample converts samples from srcRate to dstRate using linear
// interpolation, which handles non-integer ratios. When downsampling, a
// first-order low-pass at the destination Nyquist runs first to limit
// aliasing.
func Resample(samples []float64, srcRate, dstRate int) []float64 {
	if len(samples) == 0 || srcRate <= 0 || dstRate <= 0 || srcRate == dstRate {
		return samples
	}

	working := samples
	if dstRate < srcRate {
		working = lowPassFilter(samples, float64(dstRate)/2.0, float64(srcRate))
	}

	ratio := float64(srcRate) / float64(dstRate)
	newLength := int(float64(len(working)) / ratio)
	if newLength <= 0 {
		newLength = 1
	}

	resampled := make([]float64, newLength)
	for i := range resampled {
		resampled[i] = linearInterpolate(working, float64(i)*ratio)
	}
	return resampled
}

// lowPassFilter is a first-order low-pass that attenuates content above
// cutoffFreq.
func lowPassFilter(input []float64, cutoffFreq, sampleRate float64) []float64 {
	rc := 1.0 / (2 * math.Pi * cutoffFreq)
	dt := 1.0 / sampleRate
	alpha := dt / (rc + dt)

	filtered := make([]float64, len(input))
	var prev float64
	for i, x := range input {
		if i == 0 {
			filtered[i] = x * alpha
		} else {
			filtered[i] = alpha*x + (1-alpha)*prev
		}
		prev = filtered[i]
	}
	return filtered
}

func linearInterpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	if index <= 0 {
		return data[0]
	}
	if index >= float64(len(data)-1) {
		return data[len(data)-1]
	}

	i := int(index)
	frac := index - float64(i)
	return data[i] + frac*(data[i+1]-data[i])
}
