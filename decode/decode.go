package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MattaKruger/timbre/features"
	"github.com/MattaKruger/timbre/logging"
)

// Audio is one decoded recording: mono samples in [-1,1] at the decoder's
// target rate. Channels records the source layout before down-mixing.
type Audio struct {
	PCM        []float64
	SampleRate int
	Channels   int
	Duration   time.Duration
}

// DurationSeconds returns the decoded length in seconds
func (a *Audio) DurationSeconds() float64 {
	return float64(len(a.PCM)) / float64(a.SampleRate)
}

// Config holds decoder configuration. The target sample rate is the rate
// used throughout the rest of the pipeline, a constant, never per-file.
type Config struct {
	TargetSampleRate int
	FFmpegPath       string
	FFprobePath      string
	Timeout          time.Duration // per-subprocess limit for ffmpeg/ffprobe
}

// DefaultConfig returns the standard decoder configuration
func DefaultConfig() *Config {
	return &Config{
		TargetSampleRate: 22050,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		Timeout:          30 * time.Second,
	}
}

// supportedExtensions is the fixed allow-list of decodable formats,
// lower-case. WAV and MP3 decode natively; the rest shell out to ffmpeg.
var supportedExtensions = map[string]bool{
	".flac": true,
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
}

// IsSupported reports whether the path's extension is on the allow-list,
// case-insensitively.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions returns the allow-list in stable order
func SupportedExtensions() []string {
	return []string{".flac", ".m4a", ".mp3", ".ogg", ".wav"}
}

// Decoder turns audio files into mono sample sequences at a fixed rate
type Decoder struct {
	config *Config
	logger logging.Logger
}

// NewDecoder creates a decoder. A nil config selects DefaultConfig; zero
// fields fall back to their defaults individually.
func NewDecoder(config *Config) *Decoder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.TargetSampleRate <= 0 {
		config.TargetSampleRate = 22050
	}
	if config.FFmpegPath == "" {
		config.FFmpegPath = "ffmpeg"
	}
	if config.FFprobePath == "" {
		config.FFprobePath = "ffprobe"
	}

	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "decoder",
		}),
	}
}

// DecodeFile decodes the file at path. It fails with features.ErrNotFound
// when the path does not exist and features.DecodeError for corrupt or
// unsupported content.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (*Audio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, features.ErrNotFound)
		}
		return nil, err
	}

	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	d.logger.Debug("decoding file", logging.Fields{
		"path":   path,
		"format": ext,
	})

	switch ext {
	case ".wav":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		samples, rate, channels, err := decodeWAV(data)
		if err != nil {
			return nil, &features.DecodeError{Name: name, Err: err}
		}
		return d.finalize(samples, rate, channels, name)

	case ".mp3":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		samples, rate, channels, err := decodeMP3(f)
		if err != nil {
			return nil, &features.DecodeError{Name: name, Err: err}
		}
		return d.finalize(samples, rate, channels, name)

	case ".flac", ".ogg", ".m4a":
		return d.decodeFFmpegFile(ctx, path, name)

	default:
		return nil, &features.DecodeError{Name: name, Err: fmt.Errorf("unsupported format %q", ext)}
	}
}

// DecodeBytes decodes an in-memory buffer. The name carries the extension
// used for format dispatch and appears in errors.
func (d *Decoder) DecodeBytes(ctx context.Context, data []byte, name string) (*Audio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(name))

	d.logger.Debug("decoding buffer", logging.Fields{
		"name":   name,
		"format": ext,
		"bytes":  len(data),
	})

	switch ext {
	case ".wav":
		samples, rate, channels, err := decodeWAV(data)
		if err != nil {
			return nil, &features.DecodeError{Name: name, Err: err}
		}
		return d.finalize(samples, rate, channels, name)

	case ".mp3":
		samples, rate, channels, err := decodeMP3(bytes.NewReader(data))
		if err != nil {
			return nil, &features.DecodeError{Name: name, Err: err}
		}
		return d.finalize(samples, rate, channels, name)

	case ".flac", ".ogg", ".m4a":
		return d.decodeFFmpegBytes(ctx, data, name)

	default:
		return nil, &features.DecodeError{Name: name, Err: fmt.Errorf("unsupported format %q", ext)}
	}
}

// finalize down-converts the rate if needed and wraps the samples. Mono
// conversion has already happened in the format decoders.
func (d *Decoder) finalize(samples []float64, srcRate, channels int, name string) (*Audio, error) {
	if len(samples) == 0 {
		return nil, &features.DecodeError{Name: name, Err: errors.New("no audio samples decoded")}
	}

	target := d.config.TargetSampleRate
	if srcRate != target {
		samples = Resample(samples, srcRate, target)
	}

	audio := &Audio{
		PCM:        samples,
		SampleRate: target,
		Channels:   channels,
		Duration:   time.Duration(float64(len(samples)) / float64(target) * float64(time.Second)),
	}

	d.logger.Debug("decoded audio", logging.Fields{
		"name":        name,
		"samples":     len(audio.PCM),
		"sample_rate": audio.SampleRate,
		"duration":    audio.Duration.String(),
	})

	return audio, nil
}
