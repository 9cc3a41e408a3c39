package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/MattaKruger/timbre/features"
	"github.com/MattaKruger/timbre/logging"
)

// probeResult holds the audio stream properties ffprobe reported
type probeResult struct {
	Codec      string
	SampleRate int
	Channels   int
	Duration   float64
}

// decodeFFmpegFile decodes a compressed file through ffmpeg, which emits raw
// float64 little-endian mono at the target rate. The file is probed first so
// a container with no audio stream fails with a clear error instead of an
// empty decode.
func (d *Decoder) decodeFFmpegFile(ctx context.Context, path, name string) (*Audio, error) {
	ctx, cancel := d.subprocessContext(ctx)
	defer cancel()

	probe, err := d.probe(ctx, path, nil)
	if err != nil {
		return nil, &features.DecodeError{Name: name, Err: err}
	}

	args := d.ffmpegArgs(path)
	output, err := d.runFFmpeg(ctx, args, nil)
	if err != nil {
		return nil, &features.DecodeError{Name: name, Err: err}
	}

	samples := bytesToFloat64(output)
	return d.finalize(samples, d.config.TargetSampleRate, probe.Channels, name)
}

// decodeFFmpegBytes is the in-memory variant; the buffer is piped to both
// ffprobe and ffmpeg over stdin.
func (d *Decoder) decodeFFmpegBytes(ctx context.Context, data []byte, name string) (*Audio, error) {
	if len(data) == 0 {
		return nil, &features.DecodeError{Name: name, Err: errors.New("empty audio data")}
	}

	ctx, cancel := d.subprocessContext(ctx)
	defer cancel()

	probe, err := d.probe(ctx, "pipe:0", data)
	if err != nil {
		return nil, &features.DecodeError{Name: name, Err: err}
	}

	args := d.ffmpegArgs("pipe:0")
	output, err := d.runFFmpeg(ctx, args, data)
	if err != nil {
		return nil, &features.DecodeError{Name: name, Err: err}
	}

	samples := bytesToFloat64(output)
	return d.finalize(samples, d.config.TargetSampleRate, probe.Channels, name)
}

// subprocessContext applies the configured per-subprocess timeout on top of
// the caller's context.
func (d *Decoder) subprocessContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.config.Timeout > 0 {
		return context.WithTimeout(ctx, d.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// probe runs ffprobe against input (a path or "pipe:0" with stdin data) and
// parses the JSON stream description.
func (d *Decoder) probe(ctx context.Context, input string, stdin []byte) (*probeResult, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		input,
	}

	cmd := exec.CommandContext(ctx, d.config.FFprobePath, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeOutput(output)
}

// parseProbeOutput extracts the first audio stream from ffprobe JSON
func parseProbeOutput(jsonData []byte) (*probeResult, error) {
	streams := gjson.GetBytes(jsonData, "streams")
	if !streams.Exists() || len(streams.Array()) == 0 {
		return nil, errors.New("no audio streams found")
	}

	stream := streams.Array()[0]
	if codecType := stream.Get("codec_type").String(); codecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", codecType)
	}

	result := &probeResult{
		Codec:    stream.Get("codec_name").String(),
		Channels: int(stream.Get("channels").Int()),
		Duration: stream.Get("duration").Float(),
	}
	// sample_rate arrives as a JSON string
	result.SampleRate = int(stream.Get("sample_rate").Int())

	if result.Channels <= 0 || result.Channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", result.Channels)
	}

	return result, nil
}

// ffmpegArgs builds the decode command: raw float64 little-endian, mono,
// resampled to the target rate, errors only on stderr.
func (d *Decoder) ffmpegArgs(input string) []string {
	return []string{
		"-i", input,
		"-vn",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
		"-v", "error",
		"pipe:1",
	}
}

func (d *Decoder) runFFmpeg(ctx context.Context, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			d.logger.Error(err, "ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
			return nil, fmt.Errorf("ffmpeg decode failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	return output, nil
}

// bytesToFloat64 reinterprets raw f64le bytes as samples, trimming any
// trailing partial value.
func bytesToFloat64(data []byte) []float64 {
	if len(data)%8 != 0 {
		data = data[:len(data)-(len(data)%8)]
	}
	if len(data) == 0 {
		return nil
	}

	samples := make([]float64, len(data)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}
	return samples
}
