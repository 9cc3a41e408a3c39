package analysis

import (
	"math"
	"testing"

	"github.com/MattaKruger/timbre/features"
)

func sine(freq float64, sampleRate, n int) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestAnalyzeFrameCount(t *testing.T) {
	cfg := DefaultConfig()
	fa := NewFrameAnalyzer(cfg)

	n := cfg.WindowSize + 9*cfg.HopSize // exactly 10 complete windows
	frames, err := fa.Analyze(sine(440, cfg.SampleRate, n))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if frames.NumFrames != 10 {
		t.Errorf("NumFrames = %d, want 10", frames.NumFrames)
	}
	for name, series := range map[string][]float64{
		"Centroid": frames.Centroid,
		"Rolloff":  frames.Rolloff,
		"ZCR":      frames.ZCR,
		"RMS":      frames.RMS,
	} {
		if len(series) != frames.NumFrames {
			t.Errorf("len(%s) = %d, want %d", name, len(series), frames.NumFrames)
		}
	}
	if len(frames.OnsetStrength) != frames.NumFrames-1 {
		t.Errorf("len(OnsetStrength) = %d, want %d", len(frames.OnsetStrength), frames.NumFrames-1)
	}
	if len(frames.MFCC) != frames.NumFrames {
		t.Errorf("len(MFCC) = %d, want %d", len(frames.MFCC), frames.NumFrames)
	}
	if len(frames.MFCC) > 0 && len(frames.MFCC[0]) != features.NumMFCC {
		t.Errorf("MFCC width = %d, want %d", len(frames.MFCC[0]), features.NumMFCC)
	}
	if len(frames.Chroma) != frames.NumFrames {
		t.Errorf("len(Chroma) = %d, want %d", len(frames.Chroma), frames.NumFrames)
	}
	if len(frames.Chroma) > 0 && len(frames.Chroma[0]) != 12 {
		t.Errorf("Chroma width = %d, want 12", len(frames.Chroma[0]))
	}

	wantDur := float64(cfg.HopSize) / float64(cfg.SampleRate)
	if math.Abs(frames.FrameDuration-wantDur) > 1e-12 {
		t.Errorf("FrameDuration = %v, want %v", frames.FrameDuration, wantDur)
	}
}

func TestAnalyzeShortSignal(t *testing.T) {
	fa := NewFrameAnalyzer(nil)

	frames, err := fa.Analyze(make([]float64, 100))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if frames.NumFrames != 0 {
		t.Errorf("NumFrames = %d, want 0", frames.NumFrames)
	}
	if len(frames.Centroid) != 0 || len(frames.MFCC) != 0 {
		t.Error("expected empty descriptor series for short signal")
	}
}

func TestAnalyzeSineDescriptorRanges(t *testing.T) {
	cfg := DefaultConfig()
	fa := NewFrameAnalyzer(cfg)

	frames, err := fa.Analyze(sine(440, cfg.SampleRate, 2*cfg.SampleRate))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if frames.NumFrames == 0 {
		t.Fatal("no frames for a two second signal")
	}

	agg := NewAggregator(cfg)
	fv := agg.Aggregate(frames, 2.0)

	// A pure 440 Hz tone concentrates spectral mass near 440.
	if fv.SpectralCentroidHz < 350 || fv.SpectralCentroidHz > 550 {
		t.Errorf("centroid = %v Hz, want near 440", fv.SpectralCentroidHz)
	}
	if fv.SpectralRolloffHz < 300 || fv.SpectralRolloffHz > 700 {
		t.Errorf("rolloff = %v Hz, want near the tone frequency", fv.SpectralRolloffHz)
	}

	// A sine at f crosses zero about 2f times per second.
	wantZCR := 2 * 440.0 / float64(cfg.SampleRate)
	if math.Abs(fv.ZeroCrossingRate-wantZCR) > 0.01 {
		t.Errorf("zcr = %v, want about %v", fv.ZeroCrossingRate, wantZCR)
	}

	// Unit-amplitude sine has RMS 1/sqrt(2).
	if math.Abs(fv.RMSEnergy-1/math.Sqrt2) > 0.02 {
		t.Errorf("rms = %v, want about %v", fv.RMSEnergy, 1/math.Sqrt2)
	}

	if fv.ChromaEnergy <= 0 {
		t.Errorf("chroma energy = %v, want > 0 for a tonal signal", fv.ChromaEnergy)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	fa := NewFrameAnalyzer(cfg)
	signal := sine(523.25, cfg.SampleRate, cfg.SampleRate)

	first, err := fa.Analyze(signal)
	if err != nil {
		t.Fatal(err)
	}
	second, err := fa.Analyze(signal)
	if err != nil {
		t.Fatal(err)
	}

	for i := range first.Centroid {
		if first.Centroid[i] != second.Centroid[i] {
			t.Fatalf("centroid frame %d differs between runs", i)
		}
	}
	for i := range first.MFCC {
		for j := range first.MFCC[i] {
			if first.MFCC[i][j] != second.MFCC[i][j] {
				t.Fatalf("mfcc frame %d coeff %d differs between runs", i, j)
			}
		}
	}
}

func TestAggregateKnownMeans(t *testing.T) {
	cfg := DefaultConfig()
	agg := NewAggregator(cfg)

	frames := &Frames{
		Centroid:      []float64{100, 200, 300},
		Rolloff:       []float64{1000, 2000, 3000},
		ZCR:           []float64{0.1, 0.2, 0.3},
		RMS:           []float64{0.5, 0.5, 0.5},
		OnsetStrength: []float64{0, 1},
		MFCC: [][]float64{
			{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
			{3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		},
		Chroma: [][]float64{
			{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			{0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		NumFrames:     3,
		FrameDuration: cfg.FrameDuration(),
	}

	fv := agg.Aggregate(frames, 12.5)

	if fv.DurationSeconds != 12.5 {
		t.Errorf("DurationSeconds = %v, want 12.5", fv.DurationSeconds)
	}
	if fv.SampleRateHz != cfg.SampleRate {
		t.Errorf("SampleRateHz = %d, want %d", fv.SampleRateHz, cfg.SampleRate)
	}
	if fv.SpectralCentroidHz != 200 {
		t.Errorf("centroid mean = %v, want 200", fv.SpectralCentroidHz)
	}
	if fv.SpectralRolloffHz != 2000 {
		t.Errorf("rolloff mean = %v, want 2000", fv.SpectralRolloffHz)
	}
	if math.Abs(fv.ZeroCrossingRate-0.2) > 1e-12 {
		t.Errorf("zcr mean = %v, want 0.2", fv.ZeroCrossingRate)
	}
	if fv.RMSEnergy != 0.5 {
		t.Errorf("rms mean = %v, want 0.5", fv.RMSEnergy)
	}

	// Column means: first column (1+3)/2 = 2, last (13+15)/2 = 14.
	if fv.MFCC[0] != 2 {
		t.Errorf("MFCC[0] = %v, want 2", fv.MFCC[0])
	}
	if fv.MFCC[12] != 14 {
		t.Errorf("MFCC[12] = %v, want 14", fv.MFCC[12])
	}

	// Chroma: 2 ones across 24 cells.
	if math.Abs(fv.ChromaEnergy-2.0/24.0) > 1e-12 {
		t.Errorf("chroma energy = %v, want %v", fv.ChromaEnergy, 2.0/24.0)
	}
}

func TestAggregateZeroFrames(t *testing.T) {
	agg := NewAggregator(nil)

	fv := agg.Aggregate(&Frames{FrameDuration: 512.0 / 22050.0}, 0.01)

	if fv.TempoBPM != 120 {
		t.Errorf("TempoBPM = %v, want default 120", fv.TempoBPM)
	}
	if fv.SpectralCentroidHz != 0 || fv.RMSEnergy != 0 || fv.ChromaEnergy != 0 {
		t.Error("expected zero-valued descriptors for zero frames")
	}
	for i, c := range fv.MFCC {
		if c != 0 {
			t.Errorf("MFCC[%d] = %v, want 0", i, c)
		}
	}
	if fv.DurationSeconds != 0.01 {
		t.Errorf("DurationSeconds = %v, want 0.01", fv.DurationSeconds)
	}

	fv = agg.Aggregate(nil, 0)
	if fv.TempoBPM != 120 {
		t.Errorf("TempoBPM for nil frames = %v, want 120", fv.TempoBPM)
	}
}

func TestConfigNormalized(t *testing.T) {
	cfg := (&Config{SampleRate: 8000}).normalized()

	if cfg.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000 preserved", cfg.SampleRate)
	}
	if cfg.WindowSize != 2048 || cfg.HopSize != 512 {
		t.Errorf("window/hop = %d/%d, want defaults 2048/512", cfg.WindowSize, cfg.HopSize)
	}
	if cfg.RolloffPercent != 0.85 {
		t.Errorf("RolloffPercent = %v, want 0.85", cfg.RolloffPercent)
	}
	if cfg.MinTempoBPM != 30 || cfg.MaxTempoBPM != 240 {
		t.Errorf("tempo band = %v..%v, want 30..240", cfg.MinTempoBPM, cfg.MaxTempoBPM)
	}
}

func TestConfigFrameDuration(t *testing.T) {
	cfg := DefaultConfig()
	want := 512.0 / 22050.0
	if math.Abs(cfg.FrameDuration()-want) > 1e-15 {
		t.Errorf("FrameDuration = %v, want %v", cfg.FrameDuration(), want)
	}
}
