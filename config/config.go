// Package config loads application settings from the environment. Every key
// carries the TIMBRE_ prefix; unset keys fall back to defaults, while
// malformed values are errors rather than silent fallbacks.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

const envPrefix = "TIMBRE_"

// Config holds the application settings shared by every command
type Config struct {
	DatabasePath string
	DataDir      string
	SampleRate   int
	Workers      int
	FileTimeout  time.Duration
	FFmpegPath   string
	FFprobePath  string
	LogLevel     string
}

// Default returns the built-in settings used when the environment is empty
func Default() *Config {
	return &Config{
		DatabasePath: "audio_features.db",
		DataDir:      "./data",
		SampleRate:   22050,
		Workers:      runtime.NumCPU(),
		FileTimeout:  2 * time.Minute,
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		LogLevel:     "info",
	}
}

// Load reads the environment on top of the defaults
func Load() (*Config, error) {
	cfg := Default()

	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.FFmpegPath = getEnv("FFMPEG_PATH", cfg.FFmpegPath)
	cfg.FFprobePath = getEnv("FFPROBE_PATH", cfg.FFprobePath)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv(envPrefix + "SAMPLE_RATE"); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("invalid %sSAMPLE_RATE %q", envPrefix, v)
		}
		cfg.SampleRate = rate
	}

	if v := os.Getenv(envPrefix + "WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil || workers <= 0 {
			return nil, fmt.Errorf("invalid %sWORKERS %q", envPrefix, v)
		}
		cfg.Workers = workers
	}

	if v := os.Getenv(envPrefix + "FILE_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil || timeout < 0 {
			return nil, fmt.Errorf("invalid %sFILE_TIMEOUT %q", envPrefix, v)
		}
		cfg.FileTimeout = timeout
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}
