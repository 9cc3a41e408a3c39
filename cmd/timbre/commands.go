package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/MattaKruger/timbre/analysis"
	"github.com/MattaKruger/timbre/config"
	"github.com/MattaKruger/timbre/decode"
	"github.com/MattaKruger/timbre/features"
	"github.com/MattaKruger/timbre/pipeline"
	"github.com/MattaKruger/timbre/store"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.FgHiBlack)
	errorColor  = color.New(color.FgRed)
)

func fail(format string, args ...any) {
	errorColor.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// buildExtractor wires decoder and analysis from one configuration so both
// agree on the sample rate.
func buildExtractor(cfg *config.Config) *pipeline.Extractor {
	decoder := decode.NewDecoder(&decode.Config{
		TargetSampleRate: cfg.SampleRate,
		FFmpegPath:       cfg.FFmpegPath,
		FFprobePath:      cfg.FFprobePath,
		Timeout:          cfg.FileTimeout,
	})
	return pipeline.NewExtractor(decoder, &analysis.Config{SampleRate: cfg.SampleRate})
}

func openStore(cfg *config.Config) *store.SQLiteStore {
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		fail("cannot open store at %s: %v", cfg.DatabasePath, err)
	}
	return st
}

func runExtract(cfg *config.Config, path string, save, asJSON bool) {
	ctx := context.Background()

	fv, err := buildExtractor(cfg).ExtractFile(ctx, path)
	if err != nil {
		if errors.Is(err, features.ErrNotFound) {
			fail("no such file: %s", path)
		}
		fail("extraction failed: %v", err)
	}

	if save {
		st := openStore(cfg)
		defer st.Close()
		if err := st.Insert(ctx, &fv); err != nil {
			fail("save failed: %v", err)
		}
		fmt.Printf("saved as %s\n", fv.ID)
	}

	if asJSON {
		printJSON(fv)
		return
	}
	printVector(&fv)
}

func runIngest(cfg *config.Config, dir string, force bool) {
	if dir == "" {
		dir = cfg.DataDir
	}
	ctx := context.Background()

	batch := pipeline.NewBatch(buildExtractor(cfg), &pipeline.BatchConfig{
		Workers:     cfg.Workers,
		FileTimeout: cfg.FileTimeout,
	})

	result, err := batch.Run(ctx, dir)
	if err != nil {
		if errors.Is(err, features.ErrNotFound) {
			fail("no such directory: %s", dir)
		}
		fail("batch failed: %v", err)
	}

	for _, failure := range result.Failures() {
		errorColor.Printf("failed: %s (%v)\n", failure.Path, failure.Err)
	}

	extracted := result.Features()
	vectors := make([]*features.AudioFeatures, len(extracted))
	for i := range extracted {
		vectors[i] = &extracted[i]
	}

	policy := store.DuplicateSkip
	if force {
		policy = store.DuplicateForce
	}

	st := openStore(cfg)
	defer st.Close()

	summary, err := st.InsertBatch(ctx, vectors, policy)
	if err != nil {
		fail("ingest failed, nothing was stored: %v", err)
	}

	fmt.Printf("\nprocessed %d files: %d extracted, %d failed\n",
		len(result.Results), len(extracted), len(result.Failures()))
	fmt.Printf("stored %d vectors, skipped %d duplicates\n", summary.Inserted, summary.Skipped)
}

func runView(cfg *config.Config, limit int, filename, id string, asJSON bool) {
	ctx := context.Background()
	st := openStore(cfg)
	defer st.Close()

	switch {
	case id != "":
		fv, err := st.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, features.ErrNotFound) {
				fail("no vector with id %s", id)
			}
			fail("lookup failed: %v", err)
		}
		if asJSON {
			printJSON(fv)
			return
		}
		printVector(fv)

	case filename != "":
		rows, err := st.FindByFilename(ctx, filename)
		if err != nil {
			fail("lookup failed: %v", err)
		}
		if asJSON {
			printJSON(rows)
			return
		}
		if len(rows) == 0 {
			fmt.Printf("no vectors stored for %s\n", filename)
			return
		}
		for _, fv := range rows {
			printVector(fv)
			fmt.Println()
		}

	default:
		rows, err := st.List(ctx, limit, 0)
		if err != nil {
			fail("list failed: %v", err)
		}
		if asJSON {
			printJSON(rows)
			return
		}
		total, err := st.Count(ctx)
		if err != nil {
			fail("count failed: %v", err)
		}
		printTable(rows, total)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail("encoding failed: %v", err)
	}
	fmt.Println(string(out))
}

func printVector(fv *features.AudioFeatures) {
	headerColor.Println(fv.Filename)
	if fv.ID != "" {
		fmt.Printf("  %s %s\n", labelColor.Sprint("id:"), fv.ID)
	}
	if !fv.CreatedAt.IsZero() {
		fmt.Printf("  %s %s\n", labelColor.Sprint("created:"), fv.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  %s %.2fs at %d Hz\n", labelColor.Sprint("audio:"), fv.DurationSeconds, fv.SampleRateHz)
	fmt.Printf("  %s centroid %.1f Hz, rolloff %.1f Hz\n",
		labelColor.Sprint("spectral:"), fv.SpectralCentroidHz, fv.SpectralRolloffHz)
	fmt.Printf("  %s %.1f BPM, rms %.4f, zcr %.4f\n",
		labelColor.Sprint("temporal:"), fv.TempoBPM, fv.RMSEnergy, fv.ZeroCrossingRate)
	fmt.Printf("  %s %.4f\n", labelColor.Sprint("chroma:"), fv.ChromaEnergy)

	coeffs := make([]string, len(fv.MFCC))
	for i, c := range fv.MFCC {
		coeffs[i] = fmt.Sprintf("%.2f", c)
	}
	fmt.Printf("  %s [%s]\n", labelColor.Sprint("mfcc:"), strings.Join(coeffs, ", "))
}

func printTable(rows []*features.AudioFeatures, total int) {
	if len(rows) == 0 {
		fmt.Println("store is empty")
		return
	}

	headerColor.Printf("%-19s  %-32s  %8s  %7s  %10s  %8s\n",
		"CREATED", "FILENAME", "DURATION", "BPM", "CENTROID", "RMS")
	for _, fv := range rows {
		name := fv.Filename
		if len(name) > 32 {
			name = name[:29] + "..."
		}
		fmt.Printf("%-19s  %-32s  %7.2fs  %7.1f  %8.1fHz  %8.4f\n",
			fv.CreatedAt.Format("2006-01-02 15:04:05"), name,
			fv.DurationSeconds, fv.TempoBPM, fv.SpectralCentroidHz, fv.RMSEnergy)
	}
	fmt.Printf("\nshowing %d of %d stored vectors\n", len(rows), total)
}
