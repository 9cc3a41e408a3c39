package analysis

import (
	"fmt"

	"github.com/MattaKruger/timbre/algorithms/chroma"
	"github.com/MattaKruger/timbre/algorithms/spectral"
	"github.com/MattaKruger/timbre/algorithms/temporal"
	"github.com/MattaKruger/timbre/algorithms/windowing"
	"github.com/MattaKruger/timbre/logging"
)

// Frames carries the per-frame descriptor series for one recording. All
// slices share the same frame count except OnsetStrength, which holds one
// value per consecutive frame pair.
type Frames struct {
	Centroid      []float64
	Rolloff       []float64
	ZCR           []float64
	RMS           []float64
	OnsetStrength []float64
	MFCC          [][]float64
	Chroma        [][]float64

	NumFrames     int
	FrameDuration float64 // seconds between frame starts
}

// FrameAnalyzer computes short-time descriptors over a fixed window grid.
// One STFT pass feeds every spectral descriptor; the time-domain series
// reuse the same grid so all series line up frame for frame.
type FrameAnalyzer struct {
	config *Config

	window   *windowing.Hann
	stft     *spectral.STFT
	centroid *spectral.SpectralCentroid
	rolloff  *spectral.SpectralRolloff
	flux     *spectral.SpectralFlux
	zcr      *spectral.ZeroCrossingRate
	energy   *temporal.Energy
	mfcc     *spectral.MFCC
	chroma   *chroma.Chromagram

	logger logging.Logger
}

// NewFrameAnalyzer creates an analyzer for the given configuration. A nil
// config selects DefaultConfig.
func NewFrameAnalyzer(config *Config) *FrameAnalyzer {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.normalized()

	return &FrameAnalyzer{
		config:   config,
		window:   windowing.NewHann(config.WindowSize, false),
		stft:     spectral.NewSTFT(),
		centroid: spectral.NewSpectralCentroid(config.SampleRate),
		rolloff:  spectral.NewSpectralRolloff(config.SampleRate),
		flux:     spectral.NewSpectralFlux(),
		zcr:      spectral.NewZeroCrossingRate(config.WindowSize, config.HopSize),
		energy:   temporal.NewEnergy(config.WindowSize, config.HopSize),
		mfcc: spectral.NewMFCCWithParams(config.SampleRate, spectral.MFCCParams{
			NumMelFilters: config.MelFilters,
		}),
		chroma: chroma.NewChromagram(config.SampleRate, config.TuningHz),
		logger: logging.WithFields(logging.Fields{
			"component": "frame_analyzer",
		}),
	}
}

// Config returns the analyzer's effective configuration
func (fa *FrameAnalyzer) Config() *Config {
	return fa.config
}

// Analyze computes every descriptor series for a mono signal assumed to be
// at the configured sample rate. A signal shorter than one window yields a
// zero-frame result, not an error; descriptors only exist where a complete
// window fits.
func (fa *FrameAnalyzer) Analyze(samples []float64) (*Frames, error) {
	frameDuration := fa.config.FrameDuration()

	if len(samples) < fa.config.WindowSize {
		fa.logger.Debug("signal shorter than one window", logging.Fields{
			"samples":     len(samples),
			"window_size": fa.config.WindowSize,
		})
		return &Frames{
			Centroid:      []float64{},
			Rolloff:       []float64{},
			ZCR:           []float64{},
			RMS:           []float64{},
			OnsetStrength: []float64{},
			MFCC:          [][]float64{},
			Chroma:        [][]float64{},
			FrameDuration: frameDuration,
		}, nil
	}

	result, err := fa.stft.Compute(samples, fa.config.WindowSize, fa.config.HopSize, fa.config.SampleRate, fa.window)
	if err != nil {
		return nil, fmt.Errorf("stft: %w", err)
	}

	mfccFrames, err := fa.mfcc.ComputeFrames(result.Magnitude)
	if err != nil {
		return nil, fmt.Errorf("mfcc: %w", err)
	}

	frames := &Frames{
		Centroid:      fa.centroid.ComputeFrames(result.Magnitude),
		Rolloff:       fa.rolloff.ComputeFrames(result.Magnitude, fa.config.RolloffPercent),
		ZCR:           fa.zcr.ComputeFrames(samples),
		RMS:           fa.energy.ComputeFrames(samples),
		OnsetStrength: fa.flux.Compute(result.Magnitude),
		MFCC:          mfccFrames,
		Chroma:        fa.chroma.ComputeFrames(result.Magnitude, result.FreqResolution),
		NumFrames:     result.TimeFrames,
		FrameDuration: frameDuration,
	}

	fa.logger.Debug("frame analysis complete", logging.Fields{
		"frames":         frames.NumFrames,
		"frame_duration": frameDuration,
	})

	return frames, nil
}
