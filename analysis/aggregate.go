package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/MattaKruger/timbre/algorithms/temporal"
	"github.com/MattaKruger/timbre/features"
)

// Aggregator reduces per-frame descriptor series to a single fixed-size
// vector. Every scalar is an unweighted arithmetic mean over frames; tempo
// is estimated from the onset strength series instead of averaged.
type Aggregator struct {
	config *Config
	tempo  *temporal.TempoEstimator
}

// NewAggregator creates an aggregator matching the analyzer configuration
func NewAggregator(config *Config) *Aggregator {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.normalized()

	return &Aggregator{
		config: config,
		tempo:  temporal.NewTempoEstimator(config.MinTempoBPM, config.MaxTempoBPM),
	}
}

// Aggregate collapses the frame series into one vector. Identity fields
// (id, filename, created_at) are left for the caller and the store to fill.
// A zero-frame input produces zero-valued descriptors with the default
// tempo, so short clips still yield a well-formed vector.
func (a *Aggregator) Aggregate(frames *Frames, durationSeconds float64) features.AudioFeatures {
	fv := features.AudioFeatures{
		DurationSeconds: durationSeconds,
		SampleRateHz:    a.config.SampleRate,
		TempoBPM:        temporal.DefaultTempoBPM,
	}

	if frames == nil || frames.NumFrames == 0 {
		return fv
	}

	fv.SpectralCentroidHz = mean(frames.Centroid)
	fv.SpectralRolloffHz = mean(frames.Rolloff)
	fv.ZeroCrossingRate = mean(frames.ZCR)
	fv.RMSEnergy = mean(frames.RMS)
	fv.TempoBPM = a.tempo.Estimate(frames.OnsetStrength, frames.FrameDuration)

	for i := 0; i < features.NumMFCC; i++ {
		fv.MFCC[i] = meanAtIndex(frames.MFCC, i)
	}
	fv.ChromaEnergy = meanAll(frames.Chroma)

	return fv
}

// mean is stat.Mean with an empty-input guard so absent series aggregate
// to zero rather than NaN.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// meanAtIndex averages column i across rows
func meanAtIndex(rows [][]float64, i int) float64 {
	if len(rows) == 0 {
		return 0
	}
	column := make([]float64, 0, len(rows))
	for _, row := range rows {
		if i < len(row) {
			column = append(column, row[i])
		}
	}
	return mean(column)
}

// meanAll averages every cell of a frame-by-class matrix
func meanAll(rows [][]float64) float64 {
	var sum float64
	var count int
	for _, row := range rows {
		for _, v := range row {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
