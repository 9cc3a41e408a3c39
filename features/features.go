package features

import (
	"time"
)

// NumMFCC is the number of cepstral coefficients carried by a feature vector.
// The first coefficient tracks overall log energy; the remaining twelve
// describe spectral shape with increasing detail.
const NumMFCC = 13

// AudioFeatures is the fixed-size summary vector extracted from one recording.
// Every scalar is the arithmetic mean of a per-frame descriptor over the whole
// file. A vector is immutable once computed: re-extraction produces a new
// value, and the store only ever inserts, never updates.
type AudioFeatures struct {
	// ID is a synthetic identifier assigned by the store at persistence time.
	ID string `json:"id,omitempty"`

	// Filename is the natural deduplication key. It is deliberately not a
	// uniqueness constraint at the storage layer: a force ingest inserts a
	// second row alongside the old one.
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at,omitzero"`

	DurationSeconds float64 `json:"duration_seconds"`
	SampleRateHz    int     `json:"sample_rate_hz"`

	SpectralCentroidHz float64 `json:"spectral_centroid_hz"`
	SpectralRolloffHz  float64 `json:"spectral_rolloff_hz"`
	ZeroCrossingRate   float64 `json:"zero_crossing_rate"`
	RMSEnergy          float64 `json:"rms_energy"`
	TempoBPM           float64 `json:"tempo_bpm"`
	ChromaEnergy       float64 `json:"chroma_energy"`

	// MFCC is ordered and index-significant.
	MFCC [NumMFCC]float64 `json:"mfcc"`
}
