package chroma

import (
	"math"
)

// Chromagram folds a magnitude spectrogram into 12 octave-invariant pitch
// classes (C through B). Each frequency bin maps to the pitch class nearest
// its musical note; magnitudes are summed per class and each frame is scaled
// by its maximum so class weights stay in [0,1].
type Chromagram struct {
	sampleRate int
	tuningFreq float64 // A4 frequency (default 440 Hz)
	chromaBins int     // Always 12
	minFreq    float64 // Minimum frequency to consider
	maxFreq    float64 // Maximum frequency to consider
}

// NewChromagram creates a chromagram calculator with a custom tuning
func NewChromagram(sampleRate int, tuningFreq float64) *Chromagram {
	return &Chromagram{
		sampleRate: sampleRate,
		tuningFreq: tuningFreq,
		chromaBins: 12,
		minFreq:    80.0,   // Approximate E2
		maxFreq:    8000.0, // High enough for harmonics
	}
}

// NewChromagramDefault creates a chromagram calculator with A4=440Hz tuning
func NewChromagramDefault(sampleRate int) *Chromagram {
	return NewChromagram(sampleRate, 440.0)
}

// ComputeFrames converts a magnitude spectrogram (frames x bins, with the
// given Hz-per-bin resolution) into a frames x 12 chromagram.
func (c *Chromagram) ComputeFrames(magnitude [][]float64, freqResolution float64) [][]float64 {
	if len(magnitude) == 0 {
		return [][]float64{}
	}

	mapping := c.binMapping(len(magnitude[0]), freqResolution)

	chromagram := make([][]float64, len(magnitude))
	for t := range magnitude {
		chromagram[t] = make([]float64, c.chromaBins)

		for f, mag := range magnitude[t] {
			bin := mapping[f]
			if bin >= 0 {
				chromagram[t][bin] += mag
			}
		}

		c.normalizeFrame(chromagram[t])
	}

	return chromagram
}

// binMapping pre-calculates which pitch class each FFT bin belongs to.
// Bins outside [minFreq, maxFreq] map to -1 and are ignored.
func (c *Chromagram) binMapping(freqBins int, freqResolution float64) []int {
	mapping := make([]int, freqBins)

	for f := 0; f < freqBins; f++ {
		frequency := float64(f) * freqResolution

		if frequency < c.minFreq || frequency > c.maxFreq {
			mapping[f] = -1
			continue
		}

		midiNote := c.frequencyToMIDI(frequency)

		bin := int(math.Round(midiNote)) % c.chromaBins
		if bin < 0 {
			bin += c.chromaBins
		}
		mapping[f] = bin
	}

	return mapping
}

// frequencyToMIDI converts frequency to MIDI note number.
// A4 (tuningFreq) = MIDI note 69.
func (c *Chromagram) frequencyToMIDI(frequency float64) float64 {
	if frequency <= 0 {
		return 0
	}

	return 69.0 + 12.0*math.Log2(frequency/c.tuningFreq)
}

// normalizeFrame scales one chroma frame by its maximum class weight.
// Silent frames stay all zero.
func (c *Chromagram) normalizeFrame(frame []float64) {
	maxWeight := 0.0
	for _, w := range frame {
		if w > maxWeight {
			maxWeight = w
		}
	}

	if maxWeight > 1e-10 {
		for i := range frame {
			frame[i] /= maxWeight
		}
	}
}

// Labels returns the pitch class names in bin order
func (c *Chromagram) Labels() []string {
	return []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
}

// DominantClass returns the strongest pitch class per frame
func (c *Chromagram) DominantClass(chromagram [][]float64) []int {
	if len(chromagram) == 0 {
		return []int{}
	}

	dominant := make([]int, len(chromagram))

	for t, frame := range chromagram {
		maxWeight := 0.0
		maxBin := 0

		for bin, w := range frame {
			if w > maxWeight {
				maxWeight = w
				maxBin = bin
			}
		}

		dominant[t] = maxBin
	}

	return dominant
}
