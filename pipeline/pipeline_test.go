package pipeline

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/MattaKruger/timbre/features"
)

// wavBytes builds a 16-bit mono PCM WAV from float samples in [-1,1]
func wavBytes(sampleRate int, samples []float64) []byte {
	payload := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(payload[2*i:], uint16(int16(s*32767)))
	}

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(payload)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], 1)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(payload)))
	return append(header, payload...)
}

func sineWAV(freq float64, sampleRate int, seconds float64) []byte {
	n := int(float64(sampleRate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return wavBytes(sampleRate, samples)
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractFileSetsFilename(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tone.wav", sineWAV(440, 22050, 1.0))

	e := NewExtractor(nil, nil)
	fv, err := e.ExtractFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}

	if fv.Filename != "tone.wav" {
		t.Errorf("Filename = %q, want %q", fv.Filename, "tone.wav")
	}
	if fv.ID != "" || !fv.CreatedAt.IsZero() {
		t.Error("identity fields must stay empty until the store assigns them")
	}
	if math.Abs(fv.DurationSeconds-1.0) > 1e-6 {
		t.Errorf("DurationSeconds = %v, want 1.0", fv.DurationSeconds)
	}
	if fv.SampleRateHz != 22050 {
		t.Errorf("SampleRateHz = %d, want 22050", fv.SampleRateHz)
	}
	if fv.RMSEnergy <= 0 {
		t.Errorf("RMSEnergy = %v, want > 0", fv.RMSEnergy)
	}
}

func TestExtractFileMissing(t *testing.T) {
	e := NewExtractor(nil, nil)
	_, err := e.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "absent.wav"))
	if !errors.Is(err, features.ErrNotFound) {
		t.Errorf("err = %v, want features.ErrNotFound", err)
	}
}

func TestExtractBytes(t *testing.T) {
	e := NewExtractor(nil, nil)
	fv, err := e.ExtractBytes(context.Background(), sineWAV(523.25, 22050, 0.5), "c5.wav")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if fv.Filename != "c5.wav" {
		t.Errorf("Filename = %q, want %q", fv.Filename, "c5.wav")
	}
	if math.Abs(fv.DurationSeconds-0.5) > 1e-6 {
		t.Errorf("DurationSeconds = %v, want 0.5", fv.DurationSeconds)
	}
}

func TestExtractShortClip(t *testing.T) {
	// Shorter than one analysis window: zero descriptors, default tempo,
	// but still a valid vector.
	e := NewExtractor(nil, nil)
	fv, err := e.ExtractBytes(context.Background(), sineWAV(440, 22050, 0.01), "blip.wav")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if fv.TempoBPM != 120 {
		t.Errorf("TempoBPM = %v, want default 120", fv.TempoBPM)
	}
	if fv.SpectralCentroidHz != 0 {
		t.Errorf("SpectralCentroidHz = %v, want 0 for zero frames", fv.SpectralCentroidHz)
	}
}

func TestBatchRunOrderAndSkip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.wav", sineWAV(440, 22050, 0.5))
	writeFile(t, dir, "b.wav", nil) // zero-byte file fails decode
	writeFile(t, dir, "c.txt", []byte("not audio"))
	writeFile(t, dir, "d.wav", sineWAV(880, 22050, 0.5))
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	b := NewBatch(NewExtractor(nil, nil), &BatchConfig{Workers: 4})
	result, err := b.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Results) != 3 {
		t.Fatalf("got %d results, want 3 (txt and subdir skipped)", len(result.Results))
	}
	wantOrder := []string{"a.wav", "b.wav", "d.wav"}
	for i, want := range wantOrder {
		if got := filepath.Base(result.Results[i].Path); got != want {
			t.Errorf("result %d path = %q, want %q", i, got, want)
		}
	}

	if result.Results[0].Err != nil {
		t.Errorf("a.wav failed: %v", result.Results[0].Err)
	}
	var decodeErr *features.DecodeError
	if !errors.As(result.Results[1].Err, &decodeErr) {
		t.Errorf("b.wav err = %v, want a DecodeError", result.Results[1].Err)
	}
	if result.Results[2].Err != nil {
		t.Errorf("d.wav failed: %v", result.Results[2].Err)
	}

	extracted := result.Features()
	if len(extracted) != 2 {
		t.Fatalf("got %d vectors, want 2", len(extracted))
	}
	if extracted[0].Filename != "a.wav" || extracted[1].Filename != "d.wav" {
		t.Errorf("vector order = %q, %q; want a.wav, d.wav", extracted[0].Filename, extracted[1].Filename)
	}

	failures := result.Failures()
	if len(failures) != 1 || filepath.Base(failures[0].Path) != "b.wav" {
		t.Errorf("failures = %v, want just b.wav", failures)
	}
}

func TestBatchEmptyDir(t *testing.T) {
	b := NewBatch(NewExtractor(nil, nil), nil)
	result, err := b.Run(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("got %d results, want 0", len(result.Results))
	}
}

func TestBatchMissingDir(t *testing.T) {
	b := NewBatch(NewExtractor(nil, nil), nil)
	_, err := b.Run(context.Background(), filepath.Join(t.TempDir(), "no-such-dir"))
	if !errors.Is(err, features.ErrNotFound) {
		t.Errorf("err = %v, want features.ErrNotFound", err)
	}
}

func TestBatchDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.wav", sineWAV(330, 22050, 0.5))
	writeFile(t, dir, "two.wav", sineWAV(660, 22050, 0.5))

	b := NewBatch(NewExtractor(nil, nil), &BatchConfig{Workers: 2})

	first, err := b.ExtractDirectory(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.ExtractDirectory(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("got %d and %d vectors, want 2 each", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("vector %d differs between runs", i)
		}
	}
}
