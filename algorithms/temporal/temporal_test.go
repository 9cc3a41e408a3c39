package temporal

import (
	"math"
	"testing"
)

func TestEnergyConstantSignal(t *testing.T) {
	e := NewEnergy(4, 2)

	if got := e.Compute([]float64{0.5, 0.5, 0.5, 0.5}); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("RMS of constant 0.5 = %v, want 0.5", got)
	}
	if got := e.Compute([]float64{0, 0, 0}); got != 0 {
		t.Errorf("RMS of silence = %v, want 0", got)
	}
	if got := e.Compute(nil); got != 0 {
		t.Errorf("RMS of empty frame = %v, want 0", got)
	}
}

func TestEnergySineAmplitude(t *testing.T) {
	e := NewEnergy(2048, 512)

	// Full-scale sine has RMS 1/√2
	signal := make([]float64, 22050)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 441 * float64(i) / 22050)
	}

	energies := e.ComputeFrames(signal)
	want := (22050-2048)/512 + 1
	if len(energies) != want {
		t.Fatalf("got %d frames, want %d", len(energies), want)
	}

	for i, rms := range energies {
		if math.Abs(rms-1/math.Sqrt2) > 0.01 {
			t.Fatalf("frame %d RMS = %v, want ~%v", i, rms, 1/math.Sqrt2)
		}
	}
}

func TestEnergyShortSignal(t *testing.T) {
	e := NewEnergy(2048, 512)
	if got := e.ComputeFrames(make([]float64, 100)); len(got) != 0 {
		t.Errorf("short signal produced %d frames, want 0", len(got))
	}
}

func TestTempoEstimatorImpulseTrain(t *testing.T) {
	te := NewTempoEstimator(30, 240)

	// One onset every 20 frames at the analyzer's hop duration
	const period = 20
	frameDuration := 512.0 / 22050.0

	onsets := make([]float64, 400)
	for i := 0; i < len(onsets); i += period {
		onsets[i] = 1.0
	}

	want := 60.0 / (float64(period) * frameDuration)
	got := te.Estimate(onsets, frameDuration)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("tempo = %v BPM, want %v", got, want)
	}
}

func TestTempoEstimatorSlowPulse(t *testing.T) {
	te := NewTempoEstimator(30, 240)

	// One onset every 43 frames is roughly one beat per second
	frameDuration := 512.0 / 22050.0

	onsets := make([]float64, 600)
	for i := 0; i < len(onsets); i += 43 {
		onsets[i] = 1.0
	}

	want := 60.0 / (43.0 * frameDuration)
	got := te.Estimate(onsets, frameDuration)
	if math.Abs(got-want) > 1.0 {
		t.Errorf("tempo = %v BPM, want ~%v", got, want)
	}
}

func TestTempoEstimatorDefaults(t *testing.T) {
	te := NewTempoEstimator(30, 240)
	frameDuration := 512.0 / 22050.0

	tests := []struct {
		name   string
		onsets []float64
	}{
		{"too short", []float64{1, 0, 0, 1}},
		{"empty", nil},
		{"flat series", make([]float64, 200)},
		{"constant series", func() []float64 {
			s := make([]float64, 200)
			for i := range s {
				s[i] = 1.0
			}
			return s
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := te.Estimate(tt.onsets, frameDuration); got != DefaultTempoBPM {
				t.Errorf("tempo = %v, want default %v", got, DefaultTempoBPM)
			}
		})
	}
}

func TestTempoEstimatorStaysPositive(t *testing.T) {
	te := NewTempoEstimator(30, 240)
	frameDuration := 512.0 / 22050.0

	onsets := make([]float64, 300)
	for i := range onsets {
		onsets[i] = math.Abs(math.Sin(float64(i) / 7.0))
	}

	if got := te.Estimate(onsets, frameDuration); got <= 0 {
		t.Errorf("tempo = %v, want > 0", got)
	}
}
