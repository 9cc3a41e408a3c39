package temporal

import (
	"math"
)

// DefaultTempoBPM is reported when the onset series is too short or shows no
// periodic recurrence. Keeps the tempo estimate strictly positive.
const DefaultTempoBPM = 120.0

// TempoEstimator finds the dominant periodicity of an onset-strength series
// by autocorrelation and converts the winning lag to beats per minute.
type TempoEstimator struct {
	minBPM float64
	maxBPM float64
}

// NewTempoEstimator creates an estimator constrained to [minBPM, maxBPM]
func NewTempoEstimator(minBPM, maxBPM float64) *TempoEstimator {
	if minBPM <= 0 {
		minBPM = 30.0
	}
	if maxBPM <= minBPM {
		maxBPM = 240.0
	}
	return &TempoEstimator{
		minBPM: minBPM,
		maxBPM: maxBPM,
	}
}

// Estimate returns the dominant tempo of an onset-strength series.
// frameDuration is the hop duration in seconds (time between consecutive
// onset values). Returns DefaultTempoBPM when no reliable peak exists.
func (te *TempoEstimator) Estimate(onsetStrength []float64, frameDuration float64) float64 {
	if len(onsetStrength) < 10 || frameDuration <= 0 {
		return DefaultTempoBPM
	}

	maxLag := len(onsetStrength) / 2
	autocorr := te.autocorrelation(onsetStrength, maxLag)

	return te.tempoFromAutocorrelation(autocorr, frameDuration)
}

// autocorrelation computes the count-normalized autocorrelation, scaled so
// that lag 0 equals 1.
func (te *TempoEstimator) autocorrelation(series []float64, maxLag int) []float64 {
	if maxLag > len(series) {
		maxLag = len(series)
	}

	autocorr := make([]float64, maxLag)

	for lag := 0; lag < maxLag; lag++ {
		sum := 0.0
		count := 0

		for i := 0; i < len(series)-lag; i++ {
			sum += series[i] * series[i+lag]
			count++
		}

		if count > 0 {
			autocorr[lag] = sum / float64(count)
		}
	}

	if len(autocorr) > 0 && autocorr[0] > 0 {
		for i := range autocorr {
			autocorr[i] /= autocorr[0]
		}
	}

	return autocorr
}

// tempoFromAutocorrelation picks the strongest local maximum inside the lag
// band corresponding to the configured BPM range.
func (te *TempoEstimator) tempoFromAutocorrelation(autocorr []float64, frameDuration float64) float64 {
	if len(autocorr) < 3 {
		return DefaultTempoBPM
	}

	minPeriodSec := 60.0 / te.maxBPM
	maxPeriodSec := 60.0 / te.minBPM

	// Ceil on the short side keeps the reported tempo inside the band
	minLag := int(math.Ceil(minPeriodSec / frameDuration))
	maxLag := int(maxPeriodSec / frameDuration)

	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(autocorr)-1 {
		maxLag = len(autocorr) - 2
	}

	maxVal := 0.0
	bestLag := 0

	for lag := minLag; lag <= maxLag; lag++ {
		if autocorr[lag] > autocorr[lag-1] &&
			autocorr[lag] > autocorr[lag+1] &&
			autocorr[lag] > maxVal {
			maxVal = autocorr[lag]
			bestLag = lag
		}
	}

	if bestLag == 0 {
		return DefaultTempoBPM
	}

	period := float64(bestLag) * frameDuration
	return 60.0 / period
}
