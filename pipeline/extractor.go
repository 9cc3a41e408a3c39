package pipeline

import (
	"context"
	"path/filepath"

	"github.com/MattaKruger/timbre/analysis"
	"github.com/MattaKruger/timbre/decode"
	"github.com/MattaKruger/timbre/features"
	"github.com/MattaKruger/timbre/logging"
)

// Extractor runs the full chain for one input: decode to mono samples,
// frame analysis, aggregation to a feature vector. The decoder's target
// rate should match the analysis sample rate; the caller wires both from
// one configuration.
type Extractor struct {
	decoder    *decode.Decoder
	analyzer   *analysis.FrameAnalyzer
	aggregator *analysis.Aggregator
	logger     logging.Logger
}

// NewExtractor creates an extractor. A nil decoder or config selects the
// defaults, which already agree on 22.05 kHz.
func NewExtractor(decoder *decode.Decoder, config *analysis.Config) *Extractor {
	if decoder == nil {
		decoder = decode.NewDecoder(nil)
	}

	return &Extractor{
		decoder:    decoder,
		analyzer:   analysis.NewFrameAnalyzer(config),
		aggregator: analysis.NewAggregator(config),
		logger: logging.WithFields(logging.Fields{
			"component": "extractor",
		}),
	}
}

// ExtractFile produces the feature vector for one audio file. The vector's
// Filename is the path's base name; id and created_at stay empty until the
// store persists it.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (features.AudioFeatures, error) {
	audio, err := e.decoder.DecodeFile(ctx, path)
	if err != nil {
		return features.AudioFeatures{}, err
	}
	return e.extract(audio, filepath.Base(path))
}

// ExtractBytes produces the feature vector for an in-memory recording. The
// name supplies both the format extension and the vector's Filename.
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte, name string) (features.AudioFeatures, error) {
	audio, err := e.decoder.DecodeBytes(ctx, data, name)
	if err != nil {
		return features.AudioFeatures{}, err
	}
	return e.extract(audio, filepath.Base(name))
}

func (e *Extractor) extract(audio *decode.Audio, name string) (features.AudioFeatures, error) {
	frames, err := e.analyzer.Analyze(audio.PCM)
	if err != nil {
		return features.AudioFeatures{}, err
	}

	fv := e.aggregator.Aggregate(frames, audio.DurationSeconds())
	fv.Filename = name

	e.logger.Debug("extracted features", logging.Fields{
		"filename": name,
		"frames":   frames.NumFrames,
		"duration": fv.DurationSeconds,
	})

	return fv, nil
}
