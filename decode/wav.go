package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// WAVE format codes from the fmt chunk
const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

type wavFormat struct {
	formatCode    uint16
	channels      int
	sampleRate    int
	bitsPerSample int
}

// decodeWAV parses a RIFF/WAVE byte stream and returns mono samples in
// [-1,1], the source sample rate, and the source channel count. Multi-channel
// input is down-mixed by averaging interleaved frames. Supported encodings
// are 8/16/24/32-bit integer PCM and 32/64-bit IEEE float.
func decodeWAV(data []byte) ([]float64, int, int, error) {
	if len(data) < 12 {
		return nil, 0, 0, errors.New("file too small for RIFF header")
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, errors.New("not a RIFF/WAVE file")
	}

	var format *wavFormat
	var pcm []byte

	// Chunks are 8-byte headers followed by the payload, padded to even size.
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := data[offset+8:]
		if size > len(body) {
			// Truncated final chunk: tolerate a short data chunk, the
			// stream may have been cut off mid-write.
			if id != "data" || format == nil {
				return nil, 0, 0, fmt.Errorf("chunk %q exceeds file size", id)
			}
			size = len(body)
		}
		body = body[:size]

		switch id {
		case "fmt ":
			f, err := parseWAVFormat(body)
			if err != nil {
				return nil, 0, 0, err
			}
			format = f
		case "data":
			pcm = body
		}

		offset += 8 + size
		if size%2 == 1 {
			offset++
		}
	}

	if format == nil {
		return nil, 0, 0, errors.New("missing fmt chunk")
	}
	if pcm == nil {
		return nil, 0, 0, errors.New("missing data chunk")
	}
	if len(pcm) == 0 {
		return nil, 0, 0, errors.New("empty data chunk")
	}

	samples, err := convertWAVSamples(pcm, format)
	if err != nil {
		return nil, 0, 0, err
	}
	return samples, format.sampleRate, format.channels, nil
}

func parseWAVFormat(body []byte) (*wavFormat, error) {
	if len(body) < 16 {
		return nil, errors.New("fmt chunk too small")
	}

	f := &wavFormat{
		formatCode:    binary.LittleEndian.Uint16(body[0:2]),
		channels:      int(binary.LittleEndian.Uint16(body[2:4])),
		sampleRate:    int(binary.LittleEndian.Uint32(body[4:8])),
		bitsPerSample: int(binary.LittleEndian.Uint16(body[14:16])),
	}

	// WAVE_FORMAT_EXTENSIBLE carries the real format code in the first two
	// bytes of the subformat GUID.
	if f.formatCode == wavFormatExtensible {
		if len(body) < 26 {
			return nil, errors.New("extensible fmt chunk too small")
		}
		f.formatCode = binary.LittleEndian.Uint16(body[24:26])
	}

	if f.channels <= 0 {
		return nil, errors.New("invalid channel count")
	}
	if f.sampleRate <= 0 {
		return nil, errors.New("invalid sample rate")
	}
	return f, nil
}

func convertWAVSamples(pcm []byte, format *wavFormat) ([]float64, error) {
	bytesPerSample := format.bitsPerSample / 8
	if bytesPerSample == 0 {
		return nil, fmt.Errorf("invalid bit depth %d", format.bitsPerSample)
	}

	frameSize := bytesPerSample * format.channels
	numFrames := len(pcm) / frameSize
	if numFrames == 0 {
		return nil, errors.New("data chunk holds no complete frames")
	}

	read, err := wavSampleReader(format)
	if err != nil {
		return nil, err
	}

	samples := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		base := i * frameSize
		var sum float64
		for ch := 0; ch < format.channels; ch++ {
			sum += read(pcm[base+ch*bytesPerSample:])
		}
		samples[i] = sum / float64(format.channels)
	}
	return samples, nil
}

// wavSampleReader returns a function decoding one sample at the start of a
// byte slice into a float in [-1,1].
func wavSampleReader(format *wavFormat) (func([]byte) float64, error) {
	switch format.formatCode {
	case wavFormatPCM:
		switch format.bitsPerSample {
		case 8:
			// 8-bit WAV is unsigned, midpoint 128
			return func(b []byte) float64 {
				return (float64(b[0]) - 128.0) / 128.0
			}, nil
		case 16:
			return func(b []byte) float64 {
				v := int16(binary.LittleEndian.Uint16(b))
				return float64(v) / 32768.0
			}, nil
		case 24:
			return func(b []byte) float64 {
				v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
				if v&0x800000 != 0 {
					v |= ^int32(0xFFFFFF)
				}
				return float64(v) / 8388608.0
			}, nil
		case 32:
			return func(b []byte) float64 {
				v := int32(binary.LittleEndian.Uint32(b))
				return float64(v) / 2147483648.0
			}, nil
		default:
			return nil, fmt.Errorf("unsupported PCM bit depth %d", format.bitsPerSample)
		}

	case wavFormatIEEEFloat:
		switch format.bitsPerSample {
		case 32:
			return func(b []byte) float64 {
				return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
			}, nil
		case 64:
			return func(b []byte) float64 {
				return math.Float64frombits(binary.LittleEndian.Uint64(b))
			}, nil
		default:
			return nil, fmt.Errorf("unsupported float bit depth %d", format.bitsPerSample)
		}

	default:
		return nil, fmt.Errorf("unsupported WAVE format code %d", format.formatCode)
	}
}
