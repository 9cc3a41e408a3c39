package spectral

// SpectralFlux measures frame-to-frame spectral change. The positive,
// half-wave rectified form produced here is the onset-strength series that
// feeds tempo estimation: energy increases register, decays do not.
type SpectralFlux struct{}

// NewSpectralFlux creates a new spectral flux calculator
func NewSpectralFlux() *SpectralFlux {
	return &SpectralFlux{}
}

// Compute returns one value per frame transition: the sum over frequency of
// positive magnitude increases, Σ_f max(0, mag[t][f] − mag[t−1][f]).
// The result has len(spectrogram)-1 entries.
func (sf *SpectralFlux) Compute(spectrogram [][]float64) []float64 {
	if len(spectrogram) < 2 {
		return []float64{}
	}

	flux := make([]float64, len(spectrogram)-1)

	for t := 1; t < len(spectrogram); t++ {
		sum := 0.0
		for f := 0; f < len(spectrogram[t]) && f < len(spectrogram[t-1]); f++ {
			diff := spectrogram[t][f] - spectrogram[t-1][f]
			if diff > 0 {
				sum += diff
			}
		}
		flux[t-1] = sum
	}

	return flux
}
