package decode

import (
	"errors"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// decodeMP3 streams an MP3 and returns mono samples in [-1,1] plus the
// source sample rate. go-mp3 always emits 16-bit little-endian stereo, so
// each 4-byte frame is averaged down to one sample.
func decodeMP3(r io.Reader) ([]float64, int, int, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, err
	}

	var samples []float64
	buf := make([]byte, 4096)
	var rem []byte

	for {
		n, err := decoder.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if len(rem) > 0 {
				chunk = append(rem, chunk...)
				rem = nil
			}
			usable := len(chunk) - len(chunk)%4
			for i := 0; i+3 < usable; i += 4 {
				left := int16(chunk[i]) | int16(chunk[i+1])<<8
				right := int16(chunk[i+2]) | int16(chunk[i+3])<<8
				samples = append(samples, (float64(left)+float64(right))/2/32768.0)
			}
			// Reads are not guaranteed frame-aligned; carry leftovers forward.
			if usable < len(chunk) {
				rem = append(rem[:0], chunk[usable:]...)
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, 0, err
		}
	}

	if len(samples) == 0 {
		return nil, 0, 0, errors.New("stream contains no samples")
	}

	return samples, decoder.SampleRate(), 2, nil
}
